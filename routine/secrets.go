package routine

import (
	"context"
	"os"
	"strings"

	"oss.nandlabs.io/opspulse/secrets"
)

// SecretProvider resolves a routine's logical secret_ref to a concrete
// credential value. Implementations never return the raw value through any
// channel other than HttpProber's header injection.
type SecretProvider interface {
	// Resolve returns the credential for ref, or ("", false) if unset.
	Resolve(ctx context.Context, ref string) (value string, ok bool)
}

// envSecretProvider resolves secrets from process environment variables,
// grounded on original_source/api/function_app.py's _get_secret_value:
// secret_ref "X" looks up env SECRET_X; a ref that already begins with
// SECRET_ is used as-is. This mirrors the teacher's own config.GetEnvAsString
// convention (config/environment.go) for reading tunables from the
// environment, applied here to credentials instead of settings.
type envSecretProvider struct{}

// NewEnvSecretProvider returns the default, environment-backed SecretProvider.
func NewEnvSecretProvider() SecretProvider {
	return envSecretProvider{}
}

const secretEnvPrefix = "SECRET_"

func (envSecretProvider) Resolve(_ context.Context, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	envName := ref
	if !strings.HasPrefix(ref, secretEnvPrefix) {
		envName = secretEnvPrefix + ref
	}
	return os.LookupEnv(envName)
}

// storeSecretProvider resolves secrets through the teacher's secrets.Store
// abstraction (secrets/store.go), for deployments that keep credentials in
// an encrypted local store (secrets.NewLocalStore) rather than bare
// environment variables. The same SECRET_ prefix convention applies to the
// lookup key, so a routine's secret_ref is portable between either provider.
type storeSecretProvider struct {
	store secrets.Store
}

// NewStoreSecretProvider returns a SecretProvider backed by an arbitrary
// secrets.Store implementation (e.g. secrets.NewLocalStore).
func NewStoreSecretProvider(store secrets.Store) SecretProvider {
	return &storeSecretProvider{store: store}
}

func (p *storeSecretProvider) Resolve(ctx context.Context, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	key := ref
	if !strings.HasPrefix(ref, secretEnvPrefix) {
		key = secretEnvPrefix + ref
	}
	cred, err := p.store.Get(key, ctx)
	if err != nil || cred == nil {
		return "", false
	}
	return cred.Str(), true
}
