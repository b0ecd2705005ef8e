// Command prism opens a window and clears it through Vulkan every frame.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

func init() {
	// glfw and the swapchain calls must stay on the main thread.
	runtime.LockOSThread()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prism",
		Short:         "Vulkan surface and frame pacing demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newCloseCmd(), newDefaultsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "prism:", err)
		os.Exit(1)
	}
}
