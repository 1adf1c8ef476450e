package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	toolName = "loomctl"
)

// These variables should be overwritten by -ldflags
var (
	version  = "dev"
	revision = "HEAD"
)

var vipers = make(map[*cobra.Command]*viper.Viper)

var (
	defaultCommandGroup = &cobra.Group{
		ID:    "default",
		Title: "Commands:",
	}
	auxiliaryCommandGroup = &cobra.Group{
		ID:    "auxiliary",
		Title: "Auxiliary Commands:",
	}
)

var rootCmd = &cobra.Command{
	Use:     toolName,
	Short:   "Loom downtime reports from the command line",
	Long:    "Reads the loom event database and prints running and stopped time per shift and day.",
	Version: version,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}} (revision %s)
`, revision))

	rootCmd.AddGroup(defaultCommandGroup, auxiliaryCommandGroup)
	rootCmd.SetHelpCommandGroupID(auxiliaryCommandGroup.ID)
	rootCmd.SetCompletionCommandGroupID(auxiliaryCommandGroup.ID)

	// The nested names match the server's config.yaml, so --config may point
	// at the same file.
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("database.driver", "sqlite", "Database driver (sqlite or postgres)")
	rootCmd.PersistentFlags().String("database.dsn", "loom.db", "Database DSN")
	rootCmd.PersistentFlags().String("plant.timezone", "America/Sao_Paulo", "Time zone of the plant floor")
}

func initConfig() {
	// Allow using "LOOMCTL_SOME_FLAG" environment variable for "some-flag" flag
	// and "LOOMCTL_DATABASE_DSN" environment variable for "database.dsn" flag
	viper.SetEnvPrefix(toolName)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Bind persistent flags to reflect the config flag
	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		cobra.CheckErr(viper.ReadInConfig())
	} else if cfgFile := os.Getenv("CONFIG_PATH"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.ReadInConfig()
	}

	cobra.CheckErr(bindPFlags(viper.GetViper(), rootCmd))
}

func bindPFlags(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	for _, c := range cmd.Commands() {
		name := strings.Split(c.Use, " ")[0]
		// Set the default value to prevent Viper.Sub from returning nil
		v.SetDefault(name, make(map[string]any))
		subv := v.Sub(name)
		if err := bindPFlags(subv, c); err != nil {
			return err
		}
		vipers[c] = subv
	}

	// Workaround for MarkFlagRequired
	// cf. https://github.com/spf13/viper/issues/397#issuecomment-544272457
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if v.IsSet(f.Name) {
			isSet := false
			cmd.Flags().Visit(func(flag *pflag.Flag) {
				if flag.Name == f.Name {
					isSet = true
					return
				}
			})
			if isSet {
				return
			}

			if value := v.GetString(f.Name); value != "" {
				cmd.Flags().Set(f.Name, value)
			} else if value := v.GetStringSlice(f.Name); len(value) > 0 {
				cmd.Flags().Set(f.Name, strings.Join(value, ","))
			}
		}
	})

	return nil
}
