package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"restruct/internal/batch"
	"restruct/internal/move"
)

var (
	moveFile         string
	moveSourceType   string
	moveTargetType   string
	moveTargetFile   string
	moveAccessMember string
	moveAccessKind   string
	moveNamespace    string
	moveStatic       bool
	moveBatchFile    string
)

// moveMethodCmd represents the move-method command
var moveMethodCmd = &cobra.Command{
	Use:   "move-method <method>",
	Short: "Relocate one method to another type",
	Long: `Relocates a method from its declaring type to the target type,
rewriting member references and leaving a delegating stub behind.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if moveFile == "" || moveSourceType == "" || moveTargetType == "" {
			return fmt.Errorf("--file, --from and --to are required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(cfg, printReport)
		if err != nil {
			return err
		}
		op := move.Operation{
			SourceType:   moveSourceType,
			Method:       args[0],
			TargetType:   moveTargetType,
			TargetPath:   moveTargetFile,
			AccessMember: moveAccessMember,
			Namespace:    moveNamespace,
			Static:       moveStatic,
		}
		if op.AccessKind, err = parseAccessKind(moveAccessKind); err != nil {
			return err
		}
		_, err = orch.MoveMethod(cmd.Context(), moveFile, op)
		return err
	},
}

// batchSpec is the yaml shape of a move-methods batch file.
type batchSpec struct {
	File  string `yaml:"file"`
	Moves []struct {
		SourceType   string `yaml:"source_type"`
		Method       string `yaml:"method"`
		TargetType   string `yaml:"target_type"`
		TargetFile   string `yaml:"target_file"`
		AccessMember string `yaml:"access_member"`
		AccessKind   string `yaml:"access_kind"`
		Namespace    string `yaml:"namespace"`
		Static       bool   `yaml:"static"`
	} `yaml:"moves"`
}

// moveMethodsCmd represents the move-methods command
var moveMethodsCmd = &cobra.Command{
	Use:   "move-methods",
	Short: "Relocate a batch of methods in dependency order",
	Long: `Reads a yaml batch file and relocates every listed method. Moves are
ordered so that methods depended on by other batch members move first;
the first failure aborts the remainder, keeping completed moves.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if moveBatchFile == "" {
			return fmt.Errorf("--batch is required")
		}
		data, err := os.ReadFile(moveBatchFile)
		if err != nil {
			return err
		}
		var spec batchSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("parse %s: %w", moveBatchFile, err)
		}
		if strings.TrimSpace(spec.File) == "" || len(spec.Moves) == 0 {
			return fmt.Errorf("%s: file and moves are required", moveBatchFile)
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(cfg, printReport)
		if err != nil {
			return err
		}
		ops := make([]move.Operation, 0, len(spec.Moves))
		for i, m := range spec.Moves {
			if m.SourceType == "" || m.Method == "" || m.TargetType == "" {
				return fmt.Errorf("%s: move %d: source_type, method and target_type are required", moveBatchFile, i)
			}
			op := move.Operation{
				SourceType:   m.SourceType,
				Method:       m.Method,
				TargetType:   m.TargetType,
				TargetPath:   m.TargetFile,
				AccessMember: m.AccessMember,
				Namespace:    m.Namespace,
				Static:       m.Static,
			}
			if op.AccessKind, err = parseAccessKind(m.AccessKind); err != nil {
				return fmt.Errorf("%s: move %d: %w", moveBatchFile, i, err)
			}
			ops = append(ops, op)
		}
		_, err = orch.MoveMethods(cmd.Context(), spec.File, ops)
		return err
	},
}

func parseAccessKind(s string) (move.AccessKind, error) {
	switch s {
	case "", "auto":
		return move.AccessAuto, nil
	case "field":
		return move.AccessField, nil
	case "property":
		return move.AccessProperty, nil
	default:
		return move.AccessAuto, fmt.Errorf("unknown access kind %q", s)
	}
}

func printReport(rep batch.Report) {
	fmt.Println(rep.Text)
}

func init() {
	moveMethodCmd.Flags().StringVar(&moveFile, "file", "", "Source module path, relative to the root")
	moveMethodCmd.Flags().StringVar(&moveSourceType, "from", "", "Declaring type of the method")
	moveMethodCmd.Flags().StringVar(&moveTargetType, "to", "", "Target type")
	moveMethodCmd.Flags().StringVar(&moveTargetFile, "target-file", "", "Destination module path; empty keeps the source module")
	moveMethodCmd.Flags().StringVar(&moveAccessMember, "access-member", "", "Access member on the source type; empty derives one")
	moveMethodCmd.Flags().StringVar(&moveAccessKind, "access-kind", "auto", "Access member shape: auto, field or property")
	moveMethodCmd.Flags().StringVar(&moveNamespace, "namespace", "", "Namespace for a newly created destination module")
	moveMethodCmd.Flags().BoolVar(&moveStatic, "static", false, "Treat the move as a static relocation")
	rootCmd.AddCommand(moveMethodCmd)

	moveMethodsCmd.Flags().StringVar(&moveBatchFile, "batch", "", "Yaml batch file describing the moves")
	rootCmd.AddCommand(moveMethodsCmd)
}
