package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/username/weekends-helper/internal/config"
	"github.com/username/weekends-helper/internal/settings"
	"go.uber.org/zap"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "查看或修改设置",
	}

	cmd.AddCommand(settingsShowCmd())
	cmd.AddCommand(setAnchorCmd())

	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前设置",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeStore, err := loadManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			current := manager.Current()
			printf("%s: %s\n", text("第一个单休周"), current.FirstSingleWeek)
			printf("%s: %s\n", text("版本"), current.Version)
			printf("%s: %s\n", text("默认第一个单休周"), manager.Defaults().FirstSingleWeek)
			printf("%s: %s\n", text("存储"), cfg.Settings.Backend)
			if cfg.Settings.Backend != config.BackendRedis {
				printf("%s: %s\n", text("文件"), cfg.Settings.File)
			}
			return nil
		},
	}
}

func setAnchorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-anchor YYYY-MM-DD",
		Short: "设置第一个单休周的日期",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var anchor string
			if len(args) > 0 {
				anchor = args[0]
			}

			manager, closeStore, err := loadManager(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			saved, err := manager.Save(cmd.Context(), anchor)
			if err != nil {
				if errors.Is(err, settings.ErrAnchorRequired) {
					return errors.New(text("请选择第一个单休周的日期"))
				}
				logger.Error("Failed to save settings", zap.Error(err))
				return fmt.Errorf("%s: %w", text("保存设置失败"), err)
			}

			printf("%s: %s\n", text("设置已保存，第一个单休周"), saved.FirstSingleWeek)
			return nil
		},
	}
}
