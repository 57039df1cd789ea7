package cmd

import (
	"DailyFM/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动DailyFM服务器",
	Long:  `启动DailyFM推荐系统的HTTP服务器，提供每日歌单、随机挑歌等API服务`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
