// cmd/client/cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"coursekeeper/internal/app/client"
	"coursekeeper/internal/app/client/config"
	"coursekeeper/internal/utils/logger"
)

var (
	cfgFile    string
	cfg        *config.Config
	log        *slog.Logger
	app        *client.App
	debug      bool
	jsonOutput bool
	noColor    bool
	serverURL  string
	backend    string
)

var rootCmd = &cobra.Command{
	Use:   "coursekeeper",
	Short: "Coursekeeper - клиент списка учебных курсов",
	Long: `Coursekeeper ведет список учебных курсов (название, код, часы, тип)
в хранилище реального времени.

Изменения, сделанные с любого клиента, сразу видны всем подписчикам:
команда watch показывает их по мере поступления.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	var err error
	cfg, err = loadConfig()
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}
	if backend != "" {
		cfg.Backend = backend
	}

	log = logger.NewCLI(debug)

	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	cmd.SetContext(client.WithApp(cmd.Context(), app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

// loadConfig подмешивает yaml конфиг (если есть) в окружение и читает конфигурацию.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		v.AddConfigPath(filepath.Join(home, ".coursekeeper"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Конфиг не найден, используем значения по умолчанию
	}

	// значения из файла уступают переменным окружения
	for _, key := range v.AllKeys() {
		env := config.EnvName(key)
		if _, set := os.LookupEnv(env); !set {
			if err := os.Setenv(env, v.GetString(key)); err != nil {
				return nil, err
			}
		}
	}

	return config.Load()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "отключить цвета")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "адрес сервера хранилища")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "хранилище: remote, sqlite или memory")
}
