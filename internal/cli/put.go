package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/progress"
)

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path> <remote-path> [local-path remote-path]...",
		Short: "Upload one or more artifacts",
		Long: `Upload artifacts from the local filesystem to the remote repository,
publishing SHA-1 and MD5 sidecars for each one.

Paths are given in local/remote pairs:

  artifact-connector put --url https://repo.example.com \
      ./build/app.tar.gz builds/1.0/app.tar.gz`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args)%2 != 0 || len(args) == 0 {
				return fmt.Errorf("expected an even number of local/remote path pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := buildConnector()
			if err != nil {
				return err
			}

			var uploads []*descriptor.Descriptor
			for i := 0; i < len(args); i += 2 {
				uploads = append(uploads, &descriptor.Descriptor{
					Kind:         descriptor.ArtifactPut,
					RelativePath: args[i+1],
					LocalPath:    args[i],
				})
			}

			ui := progress.NewUI(len(uploads))
			sub := conn.Subscribe()
			done := make(chan struct{})
			go func() {
				ui.Run(sub)
				close(done)
			}()

			runErr := conn.Put(rootContext, uploads, nil)
			conn.Close()
			<-done
			ui.Wait()
			return runErr
		},
	}

	return cmd
}
