package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

const fixturePath = "../../internal/storage/file/testdata/acme.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag values outlive Execute; start every run from the defaults.
	flags.fixture, flags.statement, flags.scope = "", "DRE", ""
	flags.series, flags.expand, flags.format, flags.month, flags.from, flags.to = "ambos", false, "json", "", "", ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRender_JSON(t *testing.T) {
	out, err := run(t, "render", "--fixture", fixturePath, "--tipo", "dre", "--mes", "2025-01")
	assert.NoError(t, err)

	var report struct {
		Months []string `json:"meses"`
		Lines  []struct {
			ID    string  `json:"id"`
			Value float64 `json:"valor"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"2025-01"}, report.Months)
	assert.Equal(t, "res", report.Lines[4].ID)
	assert.Equal(t, 680.0, report.Lines[4].Value)
}

func TestRender_Table(t *testing.T) {
	out, err := run(t, "render", "-f", fixturePath, "-t", "DFC", "--formato", "table")
	assert.NoError(t, err)
	assert.Contains(t, out, "Caixa Operacional")
	assert.Contains(t, out, "600.00")
	assert.Equal(t, 5, len(strings.Split(strings.TrimSpace(out), "\n")))
}

func TestDiagnose(t *testing.T) {
	out, err := run(t, "diagnose", "-f", fixturePath)
	assert.NoError(t, err)
	assert.Contains(t, out, `"Ghost"`)
	assert.Contains(t, out, `"conta_sem_estrutura"`)
}

func TestRender_Errors(t *testing.T) {
	_, err := run(t, "render")
	assert.Error(t, err)
	_, err = run(t, "render", "-f", fixturePath, "--mes", "2025-01", "--inicio", "2025-01-01")
	assert.Error(t, err)
}
