package main

import (
	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/identity"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <candidate-id>",
	Short: "Print the canonical candidate UUID for an id",
	Long:  "Maps a sequential application id or a candidate UUID to the stable identity used as the report key. No database or network access is needed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var resolveNamespace string

func init() {
	resolveCmd.Flags().StringVar(&resolveNamespace, "namespace", "", "Namespace UUID (defaults to CANDIDATE_NAMESPACE)")
	rootCmd.AddCommand(resolveCmd)
}

type resolveOutput struct {
	CandidateID         string `json:"candidateId"`
	SourceApplicationID *int64 `json:"sourceApplicationId,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	ns := resolveNamespace
	if ns == "" {
		ns = config.LoadCandidateConfig().Namespace
	}
	resolver, err := identity.NewResolver(ns)
	if err != nil {
		return err
	}
	id, err := resolver.Resolve(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resolveOutput{
		CandidateID:         id.StableID.String(),
		SourceApplicationID: id.SourceApplicationID,
	})
}
