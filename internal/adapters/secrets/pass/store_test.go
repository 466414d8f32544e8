package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsertUnderPrefix(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		prefix: "apps",
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, []string{"insert", "-m", "-f", "apps/haloguard/token"}, args)
			assert.Equal(t, "T\n", input)
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), "haloguard/token", "T")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStoreGetUsesPassShowAndTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "haloguard/user"}, args)
			assert.Empty(t, input)
			return "{\"id\":\"alice\",\"username\":\"alice\"}\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "haloguard/user")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"alice","username":"alice"}`, value)
}

func TestStoreGetMapsMissingEntryToKeyNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: haloguard/token is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "haloguard/token")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "haloguard/token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "haloguard/token")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestStoreDeleteIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", "haloguard/token"}, args)
			return "", "Error: haloguard/token is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Delete(context.Background(), "haloguard/token"))
}

func TestStoreSurfacesUnavailableCommand(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "", ErrUnavailable
		},
	}

	err := store.Put(context.Background(), "haloguard/token", "T")
	require.ErrorIs(t, err, ErrUnavailable)
}
