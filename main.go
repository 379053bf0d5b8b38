package main

import (
	"os"

	"github.com/ByLCY/docview/cli"
	"github.com/ByLCY/docview/logging"
)

// 构建时通过 ldflags 注入。
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run 执行命令行并返回退出码。
func run(args []string) int {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{Version: version, Commit: commit})
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		logging.Default().Error("命令执行失败", logging.FieldError, err)
		return 1
	}
	return 0
}
