package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := RootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd().Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"migrate", "plan", "admin", "payout"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("APP_ENV", "test")

	_, err := execute(t, "migrate", "up")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER=postgres")
}

func TestAdminCreate_RequiresPasswordEnv(t *testing.T) {
	t.Setenv(adminPasswordEnv, "")

	_, err := execute(t, "admin", "create", "ops@example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), adminPasswordEnv)
}

func TestAdminCreate_MemoryStore(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("APP_ENV", "test")
	t.Setenv(adminPasswordEnv, "Sup3rSecret")

	out, err := execute(t, "admin", "create", "ops@example.com", "--name", "Ops Team")

	require.NoError(t, err)
	assert.Contains(t, out, "Created admin ops@example.com")
}

func TestPayoutApprove_InvalidGigID(t *testing.T) {
	_, err := execute(t, "payout", "approve", "--gig", "nope", "--provider", "x", "--admin", "a@b.c")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --gig")
}

func TestPayoutApprove_RequiredFlags(t *testing.T) {
	_, err := execute(t, "payout", "approve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
