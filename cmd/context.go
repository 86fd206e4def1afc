package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/emrgen/programtree"
	"github.com/emrgen/programtree/internal/server"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	configFileName = "ptree"
	configDir      = "./.tmp"
	defaultAddr    = ":4020"
)

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

// Context is the server the cli talks to.
type Context struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// saves the context info to the config file in ./.tmp
func setContextCommand() *cobra.Command {
	var addr string
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, []string{"addr"}) {
				return
			}

			if err := writeContext(Context{Addr: addr}); err != nil {
				fmt.Println("error writing config file: ", err)
			} else {
				fmt.Println("context saved")
			}
		},
	}

	command.Flags().StringVarP(&addr, "addr", "a", "", "grpc address of the server")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			printField("Addr", readContext().Addr)
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			if err := writeContext(Context{Addr: defaultAddr}); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			color.Green("context reset to %s", defaultAddr)
		},
	}

	return command
}

func writeContext(context Context) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	v := viper.New()
	v.SetConfigName(configFileName)
	v.AddConfigPath(configDir)
	v.SetConfigType("yml")
	v.Set("context", context)

	return v.WriteConfigAs(configDir + "/" + configFileName + ".yml")
}

func readContext() Context {
	ctx := Context{Addr: defaultAddr}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.AddConfigPath(configDir)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return ctx
	}

	if err := v.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}
	if ctx.Addr == "" {
		ctx.Addr = defaultAddr
	}

	return ctx
}

// newClient connects to the server of the current context.
func newClient() (programtree.Client, error) {
	return programtree.NewClient(readContext().Addr, grpc.WithUnaryInterceptor(server.UnaryRequestTimeInterceptor()))
}

// requestContext tags the request with a new correlation id, printed on failure.
func requestContext() (context.Context, string) {
	id := uuid.New().String()
	md := metadata.New(map[string]string{server.CorrelationHeader: id})
	return metadata.NewOutgoingContext(context.Background(), md), id
}
