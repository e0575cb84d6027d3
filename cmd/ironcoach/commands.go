package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironcoachapp/ironcoach/internal/config"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the coach",
	Long: `Send a message to the coach and print the reply.

Examples:
  ironcoach chat "I don't feel like training today"
  ironcoach chat I keep procrastinating on my side project`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/chat", map[string]string{"message": message})
		if err != nil {
			return err
		}

		var result struct {
			Text string `json:"text"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result.Text)
		return nil
	},
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the coaching profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/profile")
		if err != nil {
			return err
		}

		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update the profile",
	Long: `Create or update the coaching profile.

Examples:
  ironcoach profile set --goal "run a marathon in under 4 hours"
  ironcoach profile set --tone stoic --intensity 85 --goal "ship the app"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tone, _ := cmd.Flags().GetString("tone")
		goal, _ := cmd.Flags().GetString("goal")
		intensityStr, _ := cmd.Flags().GetString("intensity")

		if goal == "" {
			return fmt.Errorf("--goal is required")
		}

		body := map[string]any{"goal": goal}
		if tone != "" {
			body["tone"] = tone
		}
		if intensityStr != "" {
			intensity, err := strconv.Atoi(intensityStr)
			if err != nil {
				return fmt.Errorf("invalid --intensity %q: %w", intensityStr, err)
			}
			body["intensity"] = intensity
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/v1/profile", body)
		if err != nil {
			return err
		}

		var profile struct {
			Tone      string `json:"tone"`
			Intensity int    `json:"intensity"`
			Goal      string `json:"goal"`
		}
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		printSuccess("Profile saved: %s coach at intensity %d, goal %q", profile.Tone, profile.Intensity, profile.Goal)
		return nil
	},
}

func init() {
	profileSetCmd.Flags().String("tone", "", "coaching tone: tough, stoic, or bro")
	profileSetCmd.Flags().String("intensity", "", "coaching intensity, 0 to 100")
	profileSetCmd.Flags().String("goal", "", "the goal to be held accountable to")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the chat transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/v1/history?limit=%d", limit))
		if err != nil {
			return err
		}

		var result struct {
			Turns []struct {
				Sender    string `json:"sender"`
				Message   string `json:"message"`
				CreatedAt string `json:"created_at"`
			} `json:"turns"`
			Total int `json:"total"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Turns) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		for _, turn := range result.Turns {
			label := "You"
			color := colorCyan
			if turn.Sender == "ai" {
				label = "Coach"
				color = colorYellow
			}
			fmt.Printf("%s %s\n", colorize(color, label+":"), turn.Message)
		}
		if result.Total > len(result.Turns) {
			fmt.Printf("\n(%d of %d turns shown)\n", len(result.Turns), result.Total)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 50, "maximum number of turns to show")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
