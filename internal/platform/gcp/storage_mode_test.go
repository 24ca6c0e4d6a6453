package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfigDefaultGCS(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("", "")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS || cfg.Inferred {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestResolveObjectStorageConfigExplicitGCSIgnoresHost(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("GCS", "http://fake-gcs:4443")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS || cfg.Inferred {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestResolveObjectStorageConfigInfersEmulator(t *testing.T) {
	cfg, err := ResolveObjectStorageConfig("", "http://fake-gcs:4443/")
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator || !cfg.Inferred {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("host not trimmed: %q", cfg.EmulatorHost)
	}
	if cfg.ModeSource() != "inferred_from_emulator_host" {
		t.Fatalf("mode source: %q", cfg.ModeSource())
	}
}

func TestResolveObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		mode string
		host string
		want ObjectStorageConfigErrorCode
	}{
		{name: "invalid mode", mode: "s3", want: ObjectStorageConfigErrorInvalidMode},
		{name: "missing host", mode: "gcs_emulator", want: ObjectStorageConfigErrorMissingEmulatorHost},
		{name: "relative host", mode: "gcs_emulator", host: "fake-gcs:4443", want: ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveObjectStorageConfig(tc.mode, tc.host)
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ObjectStorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.want {
				t.Fatalf("code: want=%q got=%q", tc.want, cfgErr.Code)
			}
		})
	}
}
