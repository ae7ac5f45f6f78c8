package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/harper/dealflow/internal/thesis"
	"github.com/harper/dealflow/internal/types"
	"github.com/spf13/cobra"
)

var (
	thesisSetFundName    string
	thesisSetCheckSize   string
	thesisSetSectors     []string
	thesisSetStages      []string
	thesisSetGeographies []string
	thesisSetDescription string
	thesisSetPush        bool
)

var thesisCmd = &cobra.Command{
	Use:   "thesis",
	Short: "Manage the fund thesis used as discovery defaults",
}

var thesisShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored fund thesis",
	RunE:  runThesisShow,
}

var thesisSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the fund thesis",
	Long:  "Stores the fund thesis locally for discovery runs. With --push the thesis is also saved to your account on the API.",
	RunE:  runThesisSet,
}

var thesisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored fund thesis",
	RunE:  runThesisClear,
}

func init() {
	thesisSetCmd.Flags().StringVar(&thesisSetFundName, "fund-name", "", "Fund name")
	thesisSetCmd.Flags().StringVar(&thesisSetCheckSize, "check-size", "", "Typical check size, e.g. \"$250K - $1M\"")
	thesisSetCmd.Flags().StringSliceVar(&thesisSetSectors, "sectors", nil, "Target sectors, e.g. AI/ML,FinTech")
	thesisSetCmd.Flags().StringSliceVar(&thesisSetStages, "stages", nil, "Target stages, e.g. Seed,\"Series A\"")
	thesisSetCmd.Flags().StringSliceVar(&thesisSetGeographies, "geographies", nil, "Target geographies")
	thesisSetCmd.Flags().StringVar(&thesisSetDescription, "description", "", "Free-form thesis description")
	thesisSetCmd.Flags().BoolVar(&thesisSetPush, "push", false, "Also save the thesis to your account")

	thesisCmd.AddCommand(thesisShowCmd)
	thesisCmd.AddCommand(thesisSetCmd)
	thesisCmd.AddCommand(thesisClearCmd)
	rootCmd.AddCommand(thesisCmd)
}

func openThesisStore() (*thesis.Store, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	return thesis.NewStore(cfg.ThesisPath)
}

func runThesisShow(_ *cobra.Command, _ []string) error {
	store, err := openThesisStore()
	if err != nil {
		return err
	}

	t, err := store.Load()
	if err != nil {
		return err
	}
	if t == nil || t.IsZero() {
		fmt.Printf("No thesis configured. Run 'dealflow thesis set' to create one (%s)\n", store.Path())
		return nil
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal thesis: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func runThesisSet(cmd *cobra.Command, _ []string) error {
	store, err := openThesisStore()
	if err != nil {
		return err
	}

	// Start from the existing thesis so unset flags keep their values
	t, err := store.Load()
	if err != nil {
		return err
	}
	if t == nil {
		t = &types.FundThesis{}
	}

	if thesisSetFundName != "" {
		t.FundName = thesisSetFundName
	}
	if thesisSetCheckSize != "" {
		t.CheckSize = thesisSetCheckSize
	}
	if len(thesisSetSectors) > 0 {
		t.Sectors = thesisSetSectors
	}
	if len(thesisSetStages) > 0 {
		t.Stages = thesisSetStages
	}
	if len(thesisSetGeographies) > 0 {
		t.Geographies = thesisSetGeographies
	}
	if thesisSetDescription != "" {
		t.ThesisDescription = thesisSetDescription
	}

	if t.IsZero() {
		return fmt.Errorf("thesis is empty: set at least one of --sectors, --stages, --geographies, --fund-name or --description")
	}

	if err := store.Save(t); err != nil {
		return err
	}
	fmt.Printf("Thesis saved to %s\n", store.Path())
	fmt.Printf("Sectors: %s\n", strings.Join(t.Sectors, ", "))
	fmt.Printf("Stages: %s\n", strings.Join(t.Stages, ", "))

	if thesisSetPush {
		cfg, err := loadCLIConfig()
		if err != nil {
			return err
		}
		api, err := newAPIClient(cfg)
		if err != nil {
			return err
		}
		_, err = api.UpdateThesis(cmd.Context(), &types.ThesisUpdateRequest{
			FundName:          t.FundName,
			FundSize:          t.FundSize,
			PortfolioSize:     t.PortfolioSize,
			CheckSize:         t.CheckSize,
			CheckSizeMin:      t.CheckSizeMin,
			CheckSizeMax:      t.CheckSizeMax,
			Sectors:           t.Sectors,
			Stages:            t.Stages,
			Geographies:       t.Geographies,
			ThesisDescription: t.ThesisDescription,
			KeyMetrics:        t.KeyMetrics,
			DealBreakers:      t.DealBreakers,
		})
		if err != nil {
			return fmt.Errorf("failed to push thesis to account: %w", err)
		}
		fmt.Println("Thesis saved to your account")
	}
	return nil
}

func runThesisClear(_ *cobra.Command, _ []string) error {
	store, err := openThesisStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Thesis cleared")
	return nil
}
