package spot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"q equal to 1-level is invalid", Config{Q: 0.1, Level: 0.9, MaxExcess: 5}, true},
		{"level at zero is invalid", Config{Q: 0.01, Level: 0, MaxExcess: 5}, true},
		{"level at one is invalid", Config{Q: 0.01, Level: 1, MaxExcess: 5}, true},
		{"max_excess below five is invalid", Config{Q: 0.01, Level: 0.9, MaxExcess: 4}, true},
		{"max_excess at five is valid", Config{Q: 0.01, Level: 0.9, MaxExcess: 5}, false},
		{"negative q is invalid", Config{Q: -0.1, Level: 0.9, MaxExcess: 5}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LoggerFallsBackToNop(t *testing.T) {
	cfg := Config{}
	assert.NotNil(t, cfg.logger())
}
