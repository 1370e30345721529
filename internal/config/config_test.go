package config

import "testing"

func validProductionConfig() *Config {
	return &Config{
		Port:       "8080",
		JWTSecret:  "a-very-long-production-secret-value!",
		DBPassword: "s3cure-db-password",
		DBSSLMode:  "require",
		Env:        "production",
	}
}

func TestValidateRequiresPortAndSecret(t *testing.T) {
	t.Parallel()

	cfg := &Config{JWTSecret: "secret"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing port")
	}

	cfg = &Config{Port: "8080"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT secret")
	}
}

func TestValidateProductionRejectsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validProductionConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg = validProductionConfig()
	cfg.JWTSecret = "your-secret-key-change-in-production"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default JWT secret in production")
	}

	cfg = validProductionConfig()
	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret in production")
	}

	cfg = validProductionConfig()
	cfg.DBPassword = "password"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default DB password in production")
	}
}

func TestValidateDevelopmentAllowsDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Port:      "8080",
		JWTSecret: "your-secret-key-change-in-production",
		Env:       "development",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error in development: %v", err)
	}
}
