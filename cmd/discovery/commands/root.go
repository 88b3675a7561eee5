package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "discovery",
	Short: "미국 주식 발굴 엔진 - 3-소스 시그널 융합",
	Long: `Stock Discovery Engine

퀀트 수급, 매크로 리스크 레짐, NLP 실체 검증 세 엔진의 시그널을
융합해 티커별 추천을 산출합니다.

Usage:
  go run ./cmd/discovery [command]

Examples:
  go run ./cmd/discovery run
  go run ./cmd/discovery api
  go run ./cmd/discovery scheduler start
  go run ./cmd/discovery test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
