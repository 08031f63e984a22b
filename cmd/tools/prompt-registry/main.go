// cmd/tools/prompt-registry/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"trip-planner/internal/prompt"
	"trip-planner/pkg/registry"
)

const defaultRegistryPath = "configs/prompt-registry.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "add":
		return addCommand(args[1:], out)
	case "update":
		return updateCommand(args[1:], out)
	case "validate":
		return validateCommand(args[1:], out)
	case "list":
		return listCommand(args[1:], out)
	case "render":
		return renderCommand(args[1:], out)
	case "help":
		help(out)
		return nil
	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func addCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Variant ID (e.g., compact)")
	description := fs.String("description", "", "Description")
	persona := fs.String("persona", "", "Opening persona line of the instruction")
	instructions := fs.String("instructions", "", "Extra guidance placed after the persona")
	minRecs := fs.Int("min", 3, "Minimum number of recommendations")
	maxRecs := fs.Int("max", 5, "Maximum number of recommendations")
	tags := fs.String("tags", "", "Comma-separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *persona == "" {
		fs.Usage()
		return errors.New("id and persona are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.PromptRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Find(*id); exists {
		return fmt.Errorf("variant with ID %s already exists", *id)
	}

	reg.Variants = append(reg.Variants, registry.PromptVariant{
		ID:                 *id,
		Description:        *description,
		Persona:            *persona,
		Instructions:       *instructions,
		MinRecommendations: *minRecs,
		MaxRecommendations: *maxRecs,
		Tags:               splitTags(*tags),
	})
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added variant: %s\n", *id)
	return nil
}

func updateCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Variant ID to update")
	field := fs.String("field", "", "Field to update (description, persona, instructions, min, max, tags)")
	value := fs.String("value", "", "New value for the field")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *field == "" {
		fs.Usage()
		return errors.New("id and field are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	idx := -1
	for i := range reg.Variants {
		if reg.Variants[i].ID == *id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("variant with ID %s not found", *id)
	}

	v := &reg.Variants[idx]
	switch *field {
	case "description":
		v.Description = *value
	case "persona":
		v.Persona = *value
	case "instructions":
		v.Instructions = *value
	case "min", "max":
		n, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", *field, err)
		}
		if *field == "min" {
			v.MinRecommendations = n
		} else {
			v.MaxRecommendations = n
		}
	case "tags":
		v.Tags = splitTags(*value)
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated variant %s, field %s\n", *id, *field)
	return nil
}

func validateCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	// a registry that shadows a built-in must still be usable by the builder
	b, err := prompt.NewBuilder(prompt.VariantCompact)
	if err != nil {
		return err
	}
	if err := b.ApplyRegistry(reg); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(out, "Registry validation passed (%d variants).\n", len(reg.Variants))
	return nil
}

func listCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOUNT\tTAGS\tDESCRIPTION")
	for _, v := range reg.Variants {
		fmt.Fprintf(tw, "%s\t%d-%d\t%s\t%s\n", v.ID, v.MinRecommendations, v.MaxRecommendations, strings.Join(v.Tags, ","), v.Description)
	}
	return tw.Flush()
}

// renderCommand prints the full instruction a variant produces for a sample request.
func renderCommand(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", "", "Path to registry file (built-in variants when empty)")
	id := fs.String("id", prompt.VariantCompact, "Variant ID")
	request := fs.String("prompt", "서울 홍대 데이트 코스", "Sample user request")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := prompt.NewBuilder(prompt.VariantCompact)
	if err != nil {
		return err
	}
	if *path != "" {
		reg, err := registry.LoadRegistry(*path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := b.ApplyRegistry(reg); err != nil {
			return err
		}
	}

	b, err = b.WithVariant(*id)
	if err != nil {
		return err
	}
	text, err := b.Build(*request)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}

func save(reg *registry.PromptRegistry, path string) error {
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	if err := reg.Validate(); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Usage: prompt-registry <command> [flags]")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  add       Add a new prompt variant")
	fmt.Fprintln(out, "  update    Update a field of an existing variant")
	fmt.Fprintln(out, "  validate  Validate the registry file")
	fmt.Fprintln(out, "  list      List variants")
	fmt.Fprintln(out, "  render    Print the instruction a variant produces")
	fmt.Fprintln(out, "  help      Show this help message")
}
