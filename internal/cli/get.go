package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artifactrelay/connector/internal/descriptor"
	"github.com/artifactrelay/connector/internal/progress"
)

func newGetCmd() *cobra.Command {
	var existenceCheck bool

	cmd := &cobra.Command{
		Use:   "get <remote-path> <local-path> [remote-path local-path]...",
		Short: "Download one or more artifacts",
		Long: `Download artifacts from the remote repository into the local cache.

Paths are given in remote/local pairs:

  artifact-connector get --url https://repo.example.com \
      builds/1.0/app.tar.gz ./cache/app.tar.gz \
      builds/1.0/app.tar.gz.sha1 ./cache/app.tar.gz.sha1`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args)%2 != 0 || len(args) == 0 {
				return fmt.Errorf("expected an even number of remote/local path pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := buildConnector()
			if err != nil {
				return err
			}

			policy := parsePolicy(checksumPolicy)
			var downloads []*descriptor.Descriptor
			for i := 0; i < len(args); i += 2 {
				downloads = append(downloads, &descriptor.Descriptor{
					Kind:           descriptor.ArtifactGet,
					RelativePath:   args[i],
					LocalPath:      args[i+1],
					ExistenceCheck: existenceCheck,
					Policy:         policy,
				})
			}

			ui := progress.NewUI(len(downloads))
			sub := conn.Subscribe()
			done := make(chan struct{})
			go func() {
				ui.Run(sub)
				close(done)
			}()

			runErr := conn.Get(rootContext, downloads, nil)
			conn.Close()
			<-done
			ui.Wait()
			return runErr
		},
	}

	cmd.Flags().BoolVar(&existenceCheck, "existence-check", false, "HEAD only, skip downloading the body")
	return cmd
}
