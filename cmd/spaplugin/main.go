// Command spaplugin loads a native plugin library and inspects or
// initializes its factories, for exercising the loader and registry
// outside of a full application.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aclements/go-spa/plugin"
	"github.com/spf13/cobra"
)

func main() {
	var libPath string

	root := &cobra.Command{
		Use:   "spaplugin",
		Short: "Inspect and load native SPA-style plugin libraries",
	}
	root.PersistentFlags().StringVar(&libPath, "lib", "", "plugin library `path` or name (default: the support library from SPA_SUPPORT_LIB)")

	root.AddCommand(newListCmd(&libPath))
	root.AddCommand(newInitCmd(&libPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLoader() *plugin.Loader {
	return plugin.NewLoader(plugin.EnvFromProcess())
}

func newListCmd(libPath *string) *cobra.Command {
	var factoryName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Describe one factory a plugin library exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := newLoader()
			f, err := l.LoadFactory(*libPath, factoryName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (version %d)\n", f.Name(), f.Version())
			for _, info := range f.InterfaceInfo() {
				fmt.Fprintf(cmd.OutOrStdout(), "  provides: %s\n", info)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&factoryName, "factory", "support.log", "factory `name` to describe")
	return cmd
}

func newInitCmd(libPath *string) *cobra.Command {
	var factoryName string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a factory against the built-in support registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			sl, err := plugin.NewSupportLoader(plugin.EnvFromProcess(), logger)
			if err != nil {
				return err
			}

			h, err := sl.LoadSPAHandle(*libPath, factoryName, nil)
			if err != nil {
				return err
			}
			defer h.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s (handle version %d)\n", factoryName, h.Version())
			return nil
		},
	}
	cmd.Flags().StringVar(&factoryName, "factory", "support.log", "factory `name` to initialize")
	return cmd
}
