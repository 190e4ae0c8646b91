package cli

import (
	"github.com/spf13/pflag"
)

// bind maps a flag onto a config key. A flag only overrides file and env
// values when it was set on the command line.
func (a *app) bind(f *pflag.Flag, key string) {
	if f == nil {
		panic("cli: binding unknown flag to " + key)
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(err)
	}
}
