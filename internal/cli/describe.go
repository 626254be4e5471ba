package cli

import (
	"context"
	"fmt"
	"os"

	"buf.build/go/protoyaml"
	"github.com/pentops/protoconv/internal/ast"
	"github.com/pentops/protoconv/internal/convert"
	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/protodesc"
	"github.com/pentops/protoconv/internal/protoprint"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/descriptorpb"
)

func runDescribe(ctx context.Context, cfg struct {
	InputConfig
	Format string `flag:"format" default:"json" description:"Output format: json, yaml or proto"`
}) error {
	switch cfg.Format {
	case "json", "yaml", "proto":
	default:
		return fmt.Errorf("unknown format %q, want json, yaml or proto", cfg.Format)
	}

	return cfg.EachFile(ctx, func(ctx context.Context, pathname string, data []byte) error {
		set, err := describeDocument(pathname, string(data))
		if err != nil {
			return err
		}

		out, err := formatDescriptors(set, cfg.Format)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	})
}

// describeDocument builds one file descriptor per declaration in the
// document. The first failing declaration is printed with its source and
// returned.
func describeDocument(pathname string, document string) (*descriptorpb.FileDescriptorSet, error) {
	set := &descriptorpb.FileDescriptorSet{}

	for _, part := range convert.SplitDocument(document) {
		decl, err := ast.ParseFragment(part)
		if err != nil {
			withSource := errpos.AddSourceFile(err, pathname, part)
			fmt.Fprintln(os.Stderr, withSource.HumanString(2))
			return nil, withSource
		}

		file, err := protodesc.Build(decl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pathname, err)
		}
		set.File = append(set.File, file)
	}

	return set, nil
}

func formatDescriptors(set *descriptorpb.FileDescriptorSet, format string) (string, error) {
	switch format {
	case "json":
		data, err := protojson.MarshalOptions{
			Multiline: true,
			Indent:    "  ",
		}.Marshal(set)
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := protoyaml.MarshalOptions{}.Marshal(set)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "proto":
		out := ""
		for _, file := range set.File {
			printed, err := protoprint.PrintFile(file)
			if err != nil {
				return "", err
			}
			out += "// " + file.GetName() + "\n" + printed + "\n"
		}
		return out, nil

	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}
