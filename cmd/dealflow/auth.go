package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/harper/dealflow/internal/types"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	registerEmail    string
	registerPassword string
	registerFullName string
	registerCompany  string
	registerRole     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist API tokens",
	Long:  "Authenticates against the DealFlow API and stores the access and refresh tokens for later commands.",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a DealFlow account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard stored API tokens",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (falls back to config)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email (required)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerFullName, "name", "", "Full name (required)")
	registerCmd.Flags().StringVar(&registerCompany, "company", "", "Fund or company name")
	registerCmd.Flags().StringVar(&registerRole, "role", "", "Role at the fund")

	if err := registerCmd.MarkFlagRequired("email"); err != nil {
		panic(fmt.Sprintf("failed to mark email flag as required: %v", err))
	}
	if err := registerCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

// promptPassword reads a password from stdin when not supplied via flag.
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	email := loginEmail
	if email == "" {
		email = cfg.Email
	}
	if email == "" {
		return fmt.Errorf("email required: set --email flag or 'email' in the config file")
	}

	password := loginPassword
	if password == "" {
		password, err = promptPassword("Password")
		if err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	user, err := api.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Printf("Logged in as %s (%s)\n", user.FullName, user.Email)
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	password := registerPassword
	if password == "" {
		password, err = promptPassword("Password")
		if err != nil {
			return err
		}
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	user, err := api.Register(cmd.Context(), &types.RegisterRequest{
		Email:    registerEmail,
		Password: password,
		FullName: registerFullName,
		Company:  registerCompany,
		Role:     registerRole,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Account created for %s (%s)\n", user.FullName, user.Email)
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	if err := api.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	cfg, err := loadCLIConfig()
	if err != nil {
		return err
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		return err
	}

	user, err := api.Me(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", user.FullName, user.Email)
	if user.Company != "" {
		fmt.Printf("Company: %s\n", user.Company)
	}
	if user.Thesis != nil && !user.Thesis.IsZero() {
		fmt.Printf("Thesis sectors: %s\n", strings.Join(user.Thesis.Sectors, ", "))
		fmt.Printf("Thesis stages: %s\n", strings.Join(user.Thesis.Stages, ", "))
	}
	return nil
}
