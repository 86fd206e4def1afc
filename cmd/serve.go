package cmd

import (
	"github.com/emrgen/programtree/internal/config"
	"github.com/emrgen/programtree/internal/server"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var grpcPort string
	var httpPort string
	var postpone bool

	command := &cobra.Command{
		Use:   "serve",
		Short: "start the grpc and rest servers",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.LoadConfig()
			if cmd.Flag("grpc-port").Changed {
				cfg.Server.GrpcPort = grpcPort
			}
			if cmd.Flag("http-port").Changed {
				cfg.Server.HttpPort = httpPort
			}
			if cmd.Flag("postpone").Changed {
				cfg.Postpone.Enabled = postpone
			}

			server.NewServer(cfg).Start()
		},
	}

	command.Flags().StringVar(&grpcPort, "grpc-port", "4020", "grpc port")
	command.Flags().StringVar(&httpPort, "http-port", "4021", "http port")
	command.Flags().BoolVar(&postpone, "postpone", false, "run the job filling next year trees")

	return command
}
