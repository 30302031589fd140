package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewCLI()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	for _, name := range []string{"add_broadcast", "sum_aggr", "linear", "mse_loss", "mae_loss"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "x, index")
}

func TestListCommandPrefix(t *testing.T) {
	out, err := execute(t, "ls", "mul")
	require.NoError(t, err)
	assert.Contains(t, out, "mul_broadcast")
	assert.NotContains(t, out, "sigmoid")
}

func TestConformCommand(t *testing.T) {
	out, err := execute(t, "conform", "--kernel", "add,linear,sum_aggr", "--dtype", "float64", "--seed", "3")
	require.NoError(t, err, out)
	assert.Contains(t, out, "linear")
	assert.Contains(t, out, "ok")
	assert.NotContains(t, out, "FAIL")
}

func TestConformCommandErrors(t *testing.T) {
	_, err := execute(t, "conform", "--kernel", "softmax")
	assert.Error(t, err)

	_, err = execute(t, "conform", "--dtype", "int8")
	assert.Error(t, err)

	_, err = execute(t, "conform", "--native-lib", "/nonexistent/libkernels.so")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)

	out, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestEnvCommand(t *testing.T) {
	t.Setenv("KERNELGRAD_SEED", "11")
	out, err := execute(t, "env")
	require.NoError(t, err)
	assert.Contains(t, out, "KERNELGRAD_SEED")
	assert.Contains(t, out, "11")
}
