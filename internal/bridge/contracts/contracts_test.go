package contracts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/compose-network/bridge-deployer/internal/bridge/infra/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContracts(t *testing.T, dir string, names ...Name) {
	t.Helper()
	for _, name := range names {
		code := "parameter unit;\nstorage unit;\ncode { CDR ; NIL operation ; PAIR } # " + string(name) + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name.FileName()), []byte(code), 0644))
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads every contract", func(t *testing.T) {
		dir := t.TempDir()
		writeContracts(t, dir, Names...)

		set, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, set, len(Names))

		minter, err := set.Get(NameMinter)
		require.NoError(t, err)
		assert.Equal(t, NameMinter, minter.Name)
		assert.Contains(t, minter.Michelson, "# minter")
		assert.False(t, strings.HasSuffix(minter.Michelson, "\n"))
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		dir := t.TempDir()
		writeContracts(t, dir, NameFungibleLedger, NameQuorum, NameMinter)

		_, err := Load(dir)
		assert.ErrorContains(t, err, "nft")
	})

	t.Run("fails on an empty file", func(t *testing.T) {
		dir := t.TempDir()
		writeContracts(t, dir, Names...)
		require.NoError(t, os.WriteFile(filepath.Join(dir, NameQuorum.FileName()), []byte("\n"), 0644))

		_, err := Load(dir)
		assert.ErrorContains(t, err, "empty")
	})

	t.Run("get unknown contract", func(t *testing.T) {
		_, err := Set{}.Get(NameMinter)
		assert.Error(t, err)
	})
}

type fakeRunner struct {
	exists bool
	pulled []string
	runs   []docker.RunOptions
	runErr error
}

func (f *fakeRunner) ImageExists(context.Context, string) (bool, error) { return f.exists, nil }

func (f *fakeRunner) PullImage(_ context.Context, image string) error {
	f.pulled = append(f.pulled, image)
	return nil
}

func (f *fakeRunner) Run(_ context.Context, opts docker.RunOptions) (string, error) {
	f.runs = append(f.runs, opts)
	return "", f.runErr
}

func TestCompiler(t *testing.T) {
	sources := []Source{
		{Name: NameMinter, File: "minter/main.mligo", Entrypoint: "main"},
		{Name: NameQuorum, File: "quorum/quorum.mligo"},
	}

	t.Run("pulls the image and runs one container per source", func(t *testing.T) {
		runner := &fakeRunner{}
		out := filepath.Join(t.TempDir(), "michelson")

		err := NewCompiler(runner, "ligolang/ligo:0.60.0", t.TempDir(), out).Compile(context.Background(), sources)
		require.NoError(t, err)

		assert.Equal(t, []string{"ligolang/ligo:0.60.0"}, runner.pulled)
		require.Len(t, runner.runs, 2)
		assert.Equal(t, []string{
			"compile", "contract", "/contracts/minter/main.mligo",
			"--output-file", "/out/minter.tz",
			"--entry-point", "main",
		}, runner.runs[0].Cmd)
		assert.Equal(t, []string{
			"compile", "contract", "/contracts/quorum/quorum.mligo",
			"--output-file", "/out/quorum.tz",
		}, runner.runs[1].Cmd)
		assert.True(t, runner.runs[0].AutoRemove)
		assert.DirExists(t, out)
	})

	t.Run("skips the pull when the image is present", func(t *testing.T) {
		runner := &fakeRunner{exists: true}

		require.NoError(t, NewCompiler(runner, "ligo", t.TempDir(), t.TempDir()).Compile(context.Background(), sources[:1]))
		assert.Empty(t, runner.pulled)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		runner := &fakeRunner{exists: true, runErr: errors.New("container exited with code 1")}

		err := NewCompiler(runner, "ligo", t.TempDir(), t.TempDir()).Compile(context.Background(), sources)
		assert.ErrorContains(t, err, "failed to compile minter")
		assert.Len(t, runner.runs, 1)
	})
}
