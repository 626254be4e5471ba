package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pentops/log.go/log"
	"github.com/pentops/protoconv/internal/convert"
	"github.com/pentops/protoconv/internal/emit"
	"github.com/pentops/protoconv/internal/errpos"
	"github.com/pentops/protoconv/internal/protocheck"
)

var errVerifyFailed = errors.New("verify failed")

func runVerify(ctx context.Context, cfg struct {
	InputConfig
}) error {
	allOK := true

	err := cfg.EachFile(ctx, func(ctx context.Context, pathname string, data []byte) error {
		problems := verifyDocument(ctx, pathname, string(data))
		for _, problem := range problems {
			fmt.Fprintln(os.Stderr, problem.HumanString(2))
		}
		if len(problems) > 0 {
			allOK = false
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !allOK {
		return errVerifyFailed
	}
	return nil
}

// verifyDocument runs the strict protobuf check and then every target's
// conversion over each declaration of the document.
func verifyDocument(ctx context.Context, pathname string, document string) []*errpos.ErrorsWithSource {
	var problems []*errpos.ErrorsWithSource

	parts := convert.SplitDocument(document)
	log.WithFields(ctx, map[string]interface{}{
		"file":  pathname,
		"parts": len(parts),
	}).Debug("verifying")

	for _, part := range parts {
		if err := protocheck.CheckFragment(pathname, part); err != nil {
			problems = append(problems, errpos.AddSourceFile(err, pathname, part))
			continue
		}

		for _, target := range emit.Targets() {
			if _, err := convert.Convert(part, target); err != nil {
				err = errpos.AddContext(err, target.String())
				problems = append(problems, errpos.AddSourceFile(err, pathname, part))
			}
		}
	}

	return problems
}
