package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Port    string        `envconfig:"PORT" default:"8080"`
	Timeout time.Duration `split_words:"true" default:"5s"`
	Name    string        `split_words:"true" required:"true"`
}

type validatedConfig struct {
	Mode string `split_words:"true" default:"fast"`
}

var errBadMode = errors.New("mode must be safe")

func (c *validatedConfig) Validate() error {
	if c.Mode != "safe" {
		return errBadMode
	}
	return nil
}

func TestExportEnvironmentKeepsExistingVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "CFGTEST_PORT=9090\nCFGTEST_NAME=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("CFGTEST_PORT", "7000")
	t.Cleanup(func() { _ = os.Unsetenv("CFGTEST_NAME") })

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}

	conf, err := Process[sampleConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if conf.Port != "7000" {
		t.Fatalf("Port = %q, want the environment value", conf.Port)
	}
	if conf.Name != "from-file" {
		t.Fatalf("Name = %q, want the file value", conf.Name)
	}
	if conf.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %s", conf.Timeout)
	}
}

func TestProcessRequiredField(t *testing.T) {
	if _, err := Process[sampleConfig]("CFGMISSING"); err == nil {
		t.Fatalf("expected error for missing required field")
	}
}

func TestProcessRunsValidator(t *testing.T) {
	if _, err := Process[validatedConfig]("CFGVALID"); !errors.Is(err, errBadMode) {
		t.Fatalf("expected validation error, got %v", err)
	}

	t.Setenv("CFGVALID_MODE", "safe")
	conf, err := Process[validatedConfig]("CFGVALID")
	if err != nil || conf.Mode != "safe" {
		t.Fatalf("Process() = %#v, %v", conf, err)
	}
}

func TestExportEnvironmentIfExistsIgnoresMissingFile(t *testing.T) {
	t.Parallel()

	if err := exportEnvironmentIfExists(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("exportEnvironmentIfExists() error = %v", err)
	}
}
