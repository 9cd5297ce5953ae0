package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/cobra"
)

func DevCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Run the API server under air, rebuilding on Go and SQL changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8090", "port the server listens on")
	return cmd
}

func runDev(port string) error {
	airPath, err := exec.LookPath("air")
	if err != nil {
		fmt.Println("Missing binary: air")
		fmt.Println("Install with:")
		fmt.Println("  go install github.com/air-verse/air@latest")
		return fmt.Errorf("air not found")
	}

	airArgs := []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go build -o ./tmp/server ./cmd/server",
		"-build.bin", "./tmp/server",
		"-build.delay", "100",
		"-build.exclude_dir", "bin,tmp,data,public,_examples",
		"-build.exclude_regex", "_test.go$",
		"-build.include_ext", "go,sql",
		"-build.kill_delay", "500ms",
		"-build.send_interrupt", "true",
	}

	env := append(os.Environ(), "PORT="+port)
	if os.Getenv("APP_ENV") == "" {
		env = append(env, "APP_ENV=development")
	}

	// Replace this process so air receives terminal signals directly
	return syscall.Exec(airPath, airArgs, env)
}
