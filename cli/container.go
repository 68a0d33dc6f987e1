package cli

import (
	"fmt"
	"os"

	"github.com/prosaframework/prosa/core/descriptor"
	"github.com/spf13/cobra"
)

const dockerfileTemplate = `FROM golang:1.22 AS build
WORKDIR /src
COPY . .
RUN go build -o /out/prosa ./cmd/%s

FROM gcr.io/distroless/base-debian12
COPY --from=build /out/prosa /prosa
ENTRYPOINT ["/prosa"]
`

const buildScriptTemplate = `#!/bin/sh
set -e
go build -o ./prosa ./cmd/%s
`

func newCmdContainer() *cobra.Command {
	var docker bool

	cmd := &cobra.Command{
		Use:   "container [--docker]",
		Short: "Emit a build recipe for this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := descriptor.Read(descriptorPath); err != nil {
				return err
			}
			const binName = "example"

			if docker {
				return os.WriteFile("Dockerfile", []byte(fmt.Sprintf(dockerfileTemplate, binName)), 0o644)
			}
			return os.WriteFile("build.sh", []byte(fmt.Sprintf(buildScriptTemplate, binName)), 0o755)
		},
	}

	cmd.Flags().BoolVar(&docker, "docker", false, "Emit a Dockerfile instead of a plain build script")
	return cmd
}
