package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zberg/go-easyremote/pkg/easyremote"
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(buttonCmd)
	rootCmd.AddCommand(sliderCmd)
	rootCmd.AddCommand(panTiltCmd)
	rootCmd.AddCommand(colorCmd)

	scanCmd.Flags().Duration("wait", 3*time.Second, "How long to wait for answers")

	colorCmd.Flags().String("rgb", "", "Color as r,g,b (0-255)")
	colorCmd.Flags().String("hsv", "", "Color as h,s,v (0-1)")
	colorCmd.MarkFlagsOneRequired("rgb", "hsv")
	colorCmd.MarkFlagsMutuallyExclusive("rgb", "hsv")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the local network for lighting consoles",
	RunE: func(cmd *cobra.Command, args []string) error {
		wait, _ := cmd.Flags().GetDuration("wait")
		ctx, cancel := context.WithTimeout(cmd.Context(), wait)
		defer cancel()

		fmt.Println("Scanning for consoles...")
		results, err := easyremote.Scan(ctx, scanOptions()...)
		if err != nil {
			return fmt.Errorf("error scanning: %w", err)
		}

		if len(results) == 0 {
			fmt.Println("No consoles found.")
			return nil
		}

		for _, res := range results {
			fmt.Printf("Found console at: %s\n", res.IP)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the controls the console exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if s.Len() == 0 {
			fmt.Println("No controls found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tKIND\tID\tPAGE")
		controls := s.Controls()
		for _, name := range s.Names() {
			c := controls[name]
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.Name(), c.Kind(), c.ID(), c.Page())
		}
		return w.Flush()
	},
}

var buttonCmd = &cobra.Command{
	Use:   "button [name] [on|off]",
	Short: "Switch a button on or off",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[1] {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("invalid state '%s': must be on or off", args[1])
		}

		s, err := getSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		b, err := s.Button(args[0])
		if err != nil {
			return err
		}
		if err := b.SetState(cmd.Context(), on); err != nil {
			return fmt.Errorf("error setting button: %w", err)
		}
		fmt.Println("Command sent successfully.")
		return nil
	},
}

var sliderCmd = &cobra.Command{
	Use:   "slider [name] [value]",
	Short: "Move a slider (typically 0-255)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid value '%s': must be a number", args[1])
		}

		s, err := getSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		sl, err := s.Slider(args[0])
		if err != nil {
			return err
		}
		if err := sl.SetValue(cmd.Context(), value); err != nil {
			return fmt.Errorf("error setting slider: %w", err)
		}
		fmt.Println("Command sent successfully.")
		return nil
	},
}

var panTiltCmd = &cobra.Command{
	Use:   "pantilt [name] [pan] [tilt]",
	Short: "Position a pan/tilt pad (typically 0-65535 each)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pan, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid pan '%s': must be a number", args[1])
		}
		tilt, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid tilt '%s': must be a number", args[2])
		}

		s, err := getSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		pt, err := s.PanTilt(args[0])
		if err != nil {
			return err
		}
		if err := pt.SetPanTilt(cmd.Context(), pan, tilt); err != nil {
			return fmt.Errorf("error setting pan/tilt: %w", err)
		}
		fmt.Println("Command sent successfully.")
		return nil
	},
}

var colorCmd = &cobra.Command{
	Use:   "color [name]",
	Short: "Set a colorwheel from RGB or HSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rgbStr, _ := cmd.Flags().GetString("rgb")
		hsvStr, _ := cmd.Flags().GetString("hsv")

		var rgb []int
		var hsv []float64
		var err error
		if rgbStr != "" {
			if rgb, err = parseTriple(rgbStr, strconv.Atoi); err != nil {
				return fmt.Errorf("invalid --rgb: %w", err)
			}
		} else {
			parseFloat := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
			if hsv, err = parseTriple(hsvStr, parseFloat); err != nil {
				return fmt.Errorf("invalid --hsv: %w", err)
			}
		}

		s, err := getSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		cw, err := s.Colorwheel(args[0])
		if err != nil {
			return err
		}

		if rgb != nil {
			err = cw.SetRGB(cmd.Context(), rgb[0], rgb[1], rgb[2])
		} else {
			err = cw.SetHSV(cmd.Context(), hsv[0], hsv[1], hsv[2])
		}
		if err != nil {
			return fmt.Errorf("error setting color: %w", err)
		}
		fmt.Println("Command sent successfully.")
		return nil
	},
}

// parseTriple splits "a,b,c" and parses each part.
func parseTriple[T any](s string, parse func(string) (T, error)) ([]T, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected three comma separated values, got %q", s)
	}
	out := make([]T, 3)
	for i, p := range parts {
		v, err := parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
