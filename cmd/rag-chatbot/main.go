package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("rag-chatbot failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rag-chatbot",
		Short:         "RAG chat and document upload service",
		Long:          "Runs as an AWS Lambda handler behind API Gateway. Use the serve subcommand for a local HTTP listener.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, _, err := buildHandler(cmd.Context())
			if err != nil {
				return err
			}
			lambda.Start(h.Invoke)
			return nil
		},
	}
	root.SetContext(context.Background())
	root.AddCommand(newServeCmd())
	return root
}
