package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/docschema/docschema/internal/apperr"
	docsvc "github.com/docschema/docschema/internal/document/service"
	"github.com/docschema/docschema/internal/schema"
)

func compileCmd() *cobra.Command {
	var (
		legacy bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "compile <template-file>",
		Short: "Print the JSON Schema of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runCompile(w, args[0], legacy)
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "Add minLength: 1 to required fields")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the schema to a file instead of stdout")
	return cmd
}

func runCompile(w io.Writer, path string, legacy bool) error {
	t, err := loadTemplate(path)
	if err != nil {
		return err
	}
	var opts []schema.Option
	if legacy {
		opts = append(opts, schema.WithLegacyMinLength())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schema.Compile(t, opts...))
}

func validateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate <template-file> <document.json>",
		Short: "Check a document payload against a template",
		Long: `Runs the same checks as the server's document write path. With --strict the
variables are also validated against the compiled schema. The normalized
document is printed on success; issues are printed and the command fails otherwise.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := schema.ModeLenient
			if strict {
				mode = schema.ModeStrict
			}
			return runValidate(cmd.OutOrStdout(), args[0], args[1], mode)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Validate variables against the compiled schema")
	return cmd
}

func runValidate(w io.Writer, templatePath, documentPath string, mode schema.Mode) error {
	t, err := loadTemplate(templatePath)
	if err != nil {
		return err
	}
	in, err := loadDocument(documentPath)
	if err != nil {
		return err
	}
	if in.TemplateID == "" {
		in.TemplateID = t.ID
	}
	if in.TemplateID == "" {
		in.TemplateID = t.Name
	}

	d, err := docsvc.Validator{Mode: mode}.Prepare(t, in)
	if ve, ok := apperr.AsValidation(err); ok {
		for _, is := range ve.Issues {
			where := is.Path
			if where == "" {
				where = is.Field
			}
			fmt.Fprintf(w, "%s: %s\n", where, is.Message)
		}
		return fmt.Errorf("%d validation issue(s)", len(ve.Issues))
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
