package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/scheduler/cmd/api/commands"
)

// @title Scheduler API
// @version 1.0
// @description Task tracker with list, table and calendar views of the task collection.

// @host localhost:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:           "scheduler",
		Short:         "Task scheduler API server and calendar",
		Long:          `scheduler tracks tasks with due dates and lays them out over the days of a month, over HTTP or in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewCalendarCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
