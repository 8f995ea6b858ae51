package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/botnk/upkeep/internal/domain"
	"github.com/spf13/viper"
)

type Config struct {
	// Hosting API access and coordinates of the upstream repository PRs
	// are opened against.
	GithubToken string `mapstructure:"github_token"`
	GithubOwner string `mapstructure:"github_owner"`
	GithubRepo  string `mapstructure:"github_repo"`
	// ForkOwner is the account branches are pushed to. Defaults to BotUser.
	ForkOwner string `mapstructure:"fork_owner"`
	// BaseBranch is the branch PRs target.
	BaseBranch string `mapstructure:"base_branch"`

	// Commit identity for update commits.
	BotUser  string `mapstructure:"bot_user"`
	BotEmail string `mapstructure:"bot_email"`

	// RunURL links the workflow run that produced a PR (provenance).
	RunURL string `mapstructure:"run_url"`

	// WorkDir holds the isolated per-package checkouts.
	WorkDir string `mapstructure:"work_dir"`
	// StateDir holds run reports.
	StateDir string `mapstructure:"state_dir"`

	// External tools. Each is an executable resolved via PATH or a path.
	ProberCmd   string `mapstructure:"prober_cmd"`
	UpdaterCmd  string `mapstructure:"updater_cmd"`
	ReviewerCmd string `mapstructure:"reviewer_cmd"`

	// RequireUpgrade skips publication when the new version is not a
	// strict semver upgrade over the baseline (only enforced when both
	// versions parse as semver).
	RequireUpgrade bool `mapstructure:"require_upgrade"`

	// Targets is the static set of tracked packages.
	Targets []domain.PackageTarget `mapstructure:"targets"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		BaseBranch:     "master",
		BotUser:        "botnk",
		BotEmail:       "github-botnk@korz.dev",
		WorkDir:        ".upkeep-work",
		StateDir:       ".upkeep-state",
		ProberCmd:      "nix-instantiate",
		UpdaterCmd:     "update-package",
		ReviewerCmd:    "nix-build",
		RequireUpgrade: true,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
	}
	// Hosting coordinates are optional for local-only commands (report);
	// when either is set, both must be well formed. The run command
	// requires them via ValidateForRun.
	if c.GithubOwner != "" || c.GithubRepo != "" {
		if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
			return fmt.Errorf("invalid github configuration: %w", err)
		}
	}
	if c.BaseBranch == "" {
		return fmt.Errorf("base_branch cannot be empty")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir cannot be empty")
	}
	if strings.Contains(c.WorkDir, "..") {
		return fmt.Errorf("work_dir contains invalid path traversal")
	}
	seen := make(map[string]bool, len(c.Targets))
	for _, t := range c.Targets {
		if t.Name == "" {
			return fmt.Errorf("target with empty name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate target: %s", t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}

// ValidateForRun validates the parts only the run command needs: hosting
// credentials and a non-empty target set.
func (c *Config) ValidateForRun() error {
	if c.GithubToken == "" {
		return fmt.Errorf("github_token is required for GitHub operations")
	}
	if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
		return fmt.Errorf("invalid github configuration: %w", err)
	}
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target must be configured")
	}
	return c.Validate()
}

// PushOwner returns the account update branches are pushed to.
func (c *Config) PushOwner() string {
	if c.ForkOwner != "" {
		return c.ForkOwner
	}
	return c.BotUser
}

// CloneURL returns the clone URL of the upstream repository. Credentials
// travel in the transport auth, never in the URL.
func (c *Config) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", c.GithubOwner, c.GithubRepo)
}

// ForkURL returns the push URL of the fork.
func (c *Config) ForkURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", c.PushOwner(), c.GithubRepo)
}

// ValidateGitHubToken validates GitHub token format (exported for reuse).
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names
// (exported for reuse).
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".upkeep")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("UPKEEP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// BindEnv allows multiple env vars - checked in order.
	if err := viper.BindEnv("github_token", "GITHUB_TOKEN", "GH_TOKEN", "UPKEEP_GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind github_token env: %w", err)
	}
	if err := viper.BindEnv("github_owner", "GITHUB_OWNER", "UPKEEP_GITHUB_OWNER"); err != nil {
		return nil, fmt.Errorf("failed to bind github_owner env: %w", err)
	}
	if err := viper.BindEnv("github_repo", "GITHUB_REPO", "UPKEEP_GITHUB_REPO"); err != nil {
		return nil, fmt.Errorf("failed to bind github_repo env: %w", err)
	}
	if err := viper.BindEnv("run_url", "GITHUB_WORKFLOW_URL", "UPKEEP_RUN_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind run_url env: %w", err)
	}
	if err := viper.BindEnv("fork_owner", "UPKEEP_FORK_OWNER"); err != nil {
		return nil, fmt.Errorf("failed to bind fork_owner env: %w", err)
	}
	defaults := DefaultConfig()
	viper.SetDefault("base_branch", defaults.BaseBranch)
	viper.SetDefault("bot_user", defaults.BotUser)
	viper.SetDefault("bot_email", defaults.BotEmail)
	viper.SetDefault("work_dir", defaults.WorkDir)
	viper.SetDefault("state_dir", defaults.StateDir)
	viper.SetDefault("prober_cmd", defaults.ProberCmd)
	viper.SetDefault("updater_cmd", defaults.UpdaterCmd)
	viper.SetDefault("reviewer_cmd", defaults.ReviewerCmd)
	viper.SetDefault("require_upgrade", defaults.RequireUpgrade)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
