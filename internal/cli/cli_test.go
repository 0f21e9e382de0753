package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webRequirements = `project:
  name: Customer Management System
  type: web
requirements:
  database:
    enabled: true
    type: PostgreSQL
    transaction: required
  session:
    enabled: true
    store: db
`

const brokenRequirements = `project:
  name: broken
  type: web
requirements:
  database:
    enabled: false
    transaction: required
`

const batchConfigXML = `<component-configuration>
  <component name="main" class="nablarch.fw.launcher.Main">
    <property name="handlerQueue">
      <list>
        <component class="nablarch.fw.handler.StatusCodeConvertHandler"></component>
        <component class="nablarch.fw.handler.GlobalErrorHandler"></component>
        <component class="nablarch.common.handler.threadcontext.ThreadContextHandler"></component>
        <component class="nablarch.fw.handler.MultiThreadExecutionHandler"></component>
        <component class="nablarch.fw.handler.LoopHandler"></component>
        <component class="nablarch.fw.handler.DataReadHandler"></component>
      </list>
    </property>
  </component>
</component-configuration>`

const badBatchConfigXML = `<component-configuration>
  <component name="main" class="nablarch.fw.launcher.Main">
    <property name="handlerQueue">
      <list>
        <component class="nablarch.fw.handler.GlobalErrorHandler"></component>
        <component class="nablarch.fw.handler.StatusCodeConvertHandler"></component>
        <component class="nablarch.fw.handler.DataReadHandler"></component>
        <component class="nablarch.fw.handler.LoopHandler"></component>
      </list>
    </property>
  </component>
</component-configuration>`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestGenerateWritesArtifacts(t *testing.T) {
	reqFile := writeTempFile(t, "requirements.yaml", webRequirements)
	outDir := t.TempDir()

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewGenerateCommand(rootOpts), reqFile, "-o", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "Customer Management System")
	assert.Contains(t, out, "db-connection")
	assert.Contains(t, out, "Fingerprint:")

	xmlBytes, err := os.ReadFile(filepath.Join(outDir, "handler-queue.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(xmlBytes), "nablarch.common.handler.DbConnectionManagementHandler")

	mdBytes, err := os.ReadFile(filepath.Join(outDir, "handler-queue.md"))
	require.NoError(t, err)
	assert.Contains(t, string(mdBytes), "# Handler Queue: Customer Management System")
}

func TestGenerateXMLOnly(t *testing.T) {
	reqFile := writeTempFile(t, "requirements.yaml", webRequirements)
	outDir := t.TempDir()

	rootOpts := &RootOptions{Format: "text"}
	_, err := execute(NewGenerateCommand(rootOpts), reqFile, "-o", outDir, "-f", "xml")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outDir, "handler-queue.xml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "handler-queue.md"))
	assert.True(t, os.IsNotExist(err), "markdown must not be written with -f xml")
}

func TestGenerateJSON(t *testing.T) {
	reqFile := writeTempFile(t, "requirements.yaml", webRequirements)

	rootOpts := &RootOptions{Format: "json"}
	out, err := execute(NewGenerateCommand(rootOpts), reqFile, "-o", t.TempDir())
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "web", data["app_type"])
	assert.NotEmpty(t, data["fingerprint"])
}

func TestGenerateMissingFile(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewGenerateCommand(rootOpts), filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Equal(t, ExitParseError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestGenerateSchemaViolation(t *testing.T) {
	reqFile := writeTempFile(t, "requirements.yaml", "project:\n  name: x\n  type: desktop\n")

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewGenerateCommand(rootOpts), reqFile)

	require.Error(t, err)
	assert.Equal(t, ExitParseError, GetExitCode(err))
	assert.Contains(t, out, "E004")
}

func TestGenerateEngineFailure(t *testing.T) {
	reqFile := writeTempFile(t, "requirements.yaml", brokenRequirements)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewGenerateCommand(rootOpts), reqFile)

	require.Error(t, err)
	assert.Equal(t, ExitEngineError, GetExitCode(err))
	assert.Contains(t, out, "E102") // missing dependency
}

func TestGenerateInvalidEmitFormat(t *testing.T) {
	reqFile := writeTempFile(t, "requirements.yaml", webRequirements)

	rootOpts := &RootOptions{Format: "text"}
	_, err := execute(NewGenerateCommand(rootOpts), reqFile, "-f", "pdf")

	require.Error(t, err)
	assert.Equal(t, ExitParseError, GetExitCode(err))
}

func TestValidateCleanQueue(t *testing.T) {
	cfgFile := writeTempFile(t, "batch.xml", batchConfigXML)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewValidateCommand(rootOpts), cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Result: PASS")
}

func TestValidateCriticalViolations(t *testing.T) {
	cfgFile := writeTempFile(t, "bad-batch.xml", badBatchConfigXML)

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewValidateCommand(rootOpts), cfgFile)

	require.Error(t, err)
	assert.Equal(t, ExitCriticalViolation, GetExitCode(err))
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "C-11")
	assert.Contains(t, out, "C-08")
}

func TestValidateJSON(t *testing.T) {
	cfgFile := writeTempFile(t, "batch.xml", batchConfigXML)

	rootOpts := &RootOptions{Format: "json"}
	out, err := execute(NewValidateCommand(rootOpts), cfgFile)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateMalformedXML(t *testing.T) {
	cfgFile := writeTempFile(t, "broken.xml", "<component-configuration>\n  <component\n")

	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewValidateCommand(rootOpts), cfgFile)

	require.Error(t, err)
	assert.Equal(t, ExitParseError, GetExitCode(err))
	assert.Contains(t, out, "E006")
}

func TestListHandlersText(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewListHandlersCommand(rootOpts))
	require.NoError(t, err)

	assert.Contains(t, out, "global-error-handler")
	assert.Contains(t, out, "nablarch.fw.handler.GlobalErrorHandler")
}

func TestListHandlersFiltered(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewListHandlersCommand(rootOpts), "--type", "batch")
	require.NoError(t, err)

	assert.Contains(t, out, "status-code-convert")
	assert.NotContains(t, out, "http-character-encoding")
}

func TestListHandlersInvalidType(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	out, err := execute(NewListHandlersCommand(rootOpts), "--type", "desktop")

	require.Error(t, err)
	assert.Contains(t, out, "E104")
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	_, err := execute(cmd, "list-handlers", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCriticalViolation, GetExitCode(NewExitError(ExitCriticalViolation, "x")))
	assert.Equal(t, ExitParseError, GetExitCode(assert.AnError))
}
