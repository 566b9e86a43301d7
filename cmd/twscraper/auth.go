package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"twscraper/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Twitter API credentials",
	Long: `Manage stored Twitter API credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your bearer token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a Twitter bearer token securely",
	Long: `Store a Twitter API bearer token securely in the system keychain or
an encrypted file.

You will be prompted for:
  - Bearer token (from your Twitter developer app)
  - User Agent (optional, press Enter for default)

The profile name defaults to "default"; use named profiles to keep
tokens for multiple apps side by side.`,
	Example: `  # Store the default token
  twscraper auth login

  # Store a token under a named profile
  twscraper auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored credential profile",
	Example: `  # Remove the default profile
  twscraper auth logout

  # Remove a named profile
  twscraper auth logout work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show whether a credential profile is stored",
	Args:  cobra.MaximumNArgs(1),
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func profileArg(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(args[0])
	}
	return "default"
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential manager:", err)
		os.Exit(1)
	}

	name := profileArg(args)
	reader := bufio.NewReader(os.Stdin)

	if manager.Exists(name) {
		fmt.Printf("Profile '%s' already exists. Update it? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Bearer token (input hidden): ")
	token, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read token:", err)
		os.Exit(1)
	}
	if len(token) < 20 {
		fmt.Fprintln(os.Stderr, "that does not look like a valid bearer token")
		os.Exit(1)
	}

	fmt.Print("User Agent (press Enter for default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	cred := &auth.Credential{
		Name:        name,
		BearerToken: token,
		UserAgent:   userAgent,
	}

	if err := manager.Store(cred); err != nil {
		fmt.Fprintln(os.Stderr, "failed to store credentials:", err)
		os.Exit(1)
	}

	fmt.Printf("Credentials stored for profile '%s'.\n", name)
	fmt.Println("\nStart harvesting with:")
	fmt.Println("  twscraper scrape <account-code> <handle>")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential manager:", err)
		os.Exit(1)
	}

	name := profileArg(args)
	if err := manager.Delete(name); err != nil {
		fmt.Fprintln(os.Stderr, "failed to remove profile:", err)
		os.Exit(1)
	}
	fmt.Printf("Profile removed: %s\n", name)
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential manager:", err)
		os.Exit(1)
	}

	name := profileArg(args)
	cred, err := manager.Retrieve(name)
	if err != nil {
		fmt.Printf("No credentials stored for profile '%s'.\n", name)
		return
	}

	token := cred.BearerToken
	if len(token) > 8 {
		token = token[:4] + "..." + token[len(token)-4:]
	} else {
		token = "***"
	}

	fmt.Printf("Profile: %s\n", cred.Name)
	fmt.Printf("  Bearer token: %s\n", token)
	if cred.UserAgent != "" {
		fmt.Printf("  User agent:   %s\n", cred.UserAgent)
	}
	if !cred.LastModified.IsZero() {
		fmt.Printf("  Last updated: %s\n", cred.LastModified.Format("2006-01-02 15:04:05"))
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
