package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	var (
		addr = "localhost:8000"
		dsn  = "host=localhost user=postgres password=postgres dbname=minchat sslmode=disable"
		key  = "c29tZV9zZWNyZXQ="
		orig = []string{"http://localhost:3000"}
		dir  = "uploads"
	)

	tcases := []struct {
		name string
		addr string
		dsn  string
		key  string
		orig []string
		dir  string
		err  bool
	}{
		{
			name: "valid config",
			addr: addr,
			dsn:  dsn,
			key:  key,
			orig: orig,
			dir:  dir,
			err:  false,
		},
		{
			name: "empty address",
			addr: "",
			dsn:  dsn,
			key:  key,
			orig: orig,
			dir:  dir,
			err:  true,
		},
		{
			name: "empty DSN",
			addr: addr,
			dsn:  "",
			key:  key,
			orig: orig,
			dir:  dir,
			err:  true,
		},
		{
			name: "empty signing secret",
			addr: addr,
			dsn:  dsn,
			key:  "",
			orig: orig,
			dir:  dir,
			err:  true,
		},
		{
			name: "empty upload directory",
			addr: addr,
			dsn:  dsn,
			key:  key,
			orig: orig,
			dir:  "",
			err:  true,
		},
		{
			name: "invalid base64 signing secret",
			addr: addr,
			dsn:  dsn,
			key:  "not base64!!!",
			orig: orig,
			dir:  dir,
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.addr, tc.dsn, tc.key, tc.orig, tc.dir)
			if tc.err {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.addr, cfg.ServerAddr)
			assert.Equal(t, tc.dsn, cfg.DatabaseDSN)
			assert.Equal(t, []byte("some_secret"), cfg.SigningKey)
			assert.Equal(t, tc.orig, cfg.AllowedOrigins)
			assert.Equal(t, tc.dir, cfg.UploadDir)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		env, err := FromEnv()
		assert.NoError(t, err)
		assert.Equal(t, "localhost:8000", env.Addr)
		assert.Equal(t, "uploads", env.UploadDir)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MINCHAT_ADDR", "0.0.0.0:9000")
		t.Setenv("MINCHAT_DATABASE_DSN", "host=db user=minchat")
		t.Setenv("MINCHAT_ALLOWED_ORIGINS", "http://a.example.com,http://b.example.com")

		env, err := FromEnv()
		assert.NoError(t, err)
		assert.Equal(t, "0.0.0.0:9000", env.Addr)
		assert.Equal(t, "host=db user=minchat", env.DatabaseDSN)
		assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, env.AllowedOrigins)
	})
}
