package bridge

import (
	"time"

	"github.com/spf13/viper"
)

// flagDef defines a command-line flag with its configuration.
type (
	flagType interface {
		string | int | bool | time.Duration
	}

	flagDef[T flagType] struct {
		name         string
		viperKey     string
		defaultValue T
		description  string
	}
)

// Defaults come from the embedded config.example.yaml, flags only override.
var (
	stringFlags = []flagDef[string]{
		// Chain
		{"network", "deploy.network", "", "Tezos network name written to the output"},
		{"identity", "deploy.identity", "", "Key hash of the deploying account"},
		{"target", "deploy.target", "", "Deployment target (live or dry-run)"},
		{"gateway-url", "deploy.gateway.url", "", "Operation relay JSON-RPC URL"},
		{"explorer-url", "deploy.explorer-url", "", "Block explorer base URL"},

		// Directories
		{"contracts-dir", "deploy.contracts-dir", "", "Directory holding the compiled Michelson contracts"},
		{"state-dir", "deploy.state-dir", "", "Directory holding state.json"},
		{"output-dir", "deploy.output-dir", "", "Directory receiving output.yaml"},

		// Governance
		{"governance-contract", "deploy.governance.contract", "", "Minter governance contract (defaults to the identity)"},
		{"fees-contract", "deploy.governance.fees-contract", "", "Minter fees contract (defaults to the identity)"},

		// Compilation
		{"ligo-image", "compile.image", "", "LIGO docker image"},
		{"ligo-dockerfile", "compile.dockerfile", "", "Dockerfile building the LIGO image instead of pulling it"},
		{"ligo-sources-dir", "compile.sources-dir", "", "Directory holding the LIGO sources"},
		{"ligo-repository-url", "compile.repository.url", "", "Git repository cloned into the sources directory"},
		{"ligo-repository-ref", "compile.repository.ref", "", "Branch or tag of the LIGO repository"},
	}

	intFlags = []flagDef[int]{
		{"threshold", "deploy.threshold", 0, "Signatures required by the quorum"},
		{"gateway-ready-attempts", "deploy.gateway.ready-attempts", 0, "Readiness probes sent to the relay before deploying"},
	}

	durationFlags = []flagDef[time.Duration]{
		{"gateway-call-timeout", "deploy.gateway.call-timeout", 0, "Timeout of a single relay call"},
		{"gateway-ready-interval", "deploy.gateway.ready-interval", 0, "Delay between readiness probes"},
	}

	boolFlags = []flagDef[bool]{
		{"resume", "deploy.resume", false, "Continue the deployment recorded in state.json"},
		{"compile", "compile.enabled", false, "Compile the LIGO sources before deploying"},
	}
)

func init() {
	if err := declareFlags(stringFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(intFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(durationFlags); err != nil {
		panic(err)
	}
	if err := declareFlags(boolFlags); err != nil {
		panic(err)
	}
	CMD.AddCommand(compileCmd)
	CMD.AddCommand(deployCmd)
	CMD.AddCommand(storageCmd)
}

// declareFlags declares multiple flags and binds them to viper configuration keys.
func declareFlags[T flagType](flags []flagDef[T]) error {
	for _, flag := range flags {
		if err := declareFlag(flag.name, flag.viperKey, flag.defaultValue, flag.description); err != nil {
			return err
		}
	}
	return nil
}

// declareFlag declares a persistent flag, shared by every subcommand, and
// binds it to a viper configuration key.
func declareFlag[T flagType](flagName, viperKey string, defaultValue T, description string) error {
	flags := CMD.PersistentFlags()

	var zero T
	switch any(zero).(type) {
	case string:
		flags.String(flagName, any(defaultValue).(string), description)
	case int:
		flags.Int(flagName, any(defaultValue).(int), description)
	case bool:
		flags.Bool(flagName, any(defaultValue).(bool), description)
	case time.Duration:
		flags.Duration(flagName, any(defaultValue).(time.Duration), description)
	}
	return viper.BindPFlag(viperKey, flags.Lookup(flagName))
}
