// Command house runs the auction house server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mdlayher/vsock"

	"github.com/cloudx-io/auctionhouse/bank"
	"github.com/cloudx-io/auctionhouse/core"
	"github.com/cloudx-io/auctionhouse/notify"
	"github.com/cloudx-io/auctionhouse/pkg/logging"
)

func main() {
	logger := logging.Setup()
	if err := run(logger); err != nil {
		logger.Error("house server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	houseCfg, err := cfg.HouseConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, err := bank.New(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer ledger.Close()
	if err := openLedgerAccounts(ctx, ledger, cfg, houseCfg); err != nil {
		return err
	}
	logger.Info("ledger initialized", "path", cfg.LedgerPath)

	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier, err := notify.NewKafkaNotifier(notify.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka notifier: %w", err)
		}
		defer kafkaNotifier.Close()
		notifiers = append(notifiers, kafkaNotifier)
		logger.Info("kafka notifier initialized", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	house, err := core.NewHouse(houseCfg, notifiers, ledger, core.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize house: %w", err)
	}

	keyManager, err := loadKeys(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize key manager: %w", err)
	}
	logger.Info("key manager initialized", "algorithm", keyAlgorithm)

	listener, err := listen(cfg)
	if err != nil {
		return err
	}

	server := NewServer(house, keyManager, cfg.MaxWorkers, cfg.ReadTimeout, logger)
	return server.Serve(ctx, listener)
}

func loadKeys(cfg Config) (*KeyManager, error) {
	if cfg.SigningKeyPath != "" {
		return LoadKeyManager(cfg.SigningKeyPath)
	}
	return NewKeyManager()
}

func listen(cfg Config) (net.Listener, error) {
	if cfg.VsockPort != 0 {
		listener, err := vsock.Listen(cfg.VsockPort, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create vsock listener: %w", err)
		}
		return listener, nil
	}
	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr, err)
	}
	return listener, nil
}

// openLedgerAccounts opens the house account (with overdraft) and any
// configured participant accounts that do not exist yet.
func openLedgerAccounts(ctx context.Context, ledger *bank.Ledger, cfg Config, houseCfg core.Config) error {
	if _, err := ledger.Balance(ctx, houseCfg.HouseAccount); err != nil {
		if err := ledger.OpenAccount(ctx, houseCfg.HouseAccount, houseCfg.HouseAuthCode, core.Zero, true); err != nil {
			return fmt.Errorf("failed to open house account: %w", err)
		}
	}

	for _, spec := range cfg.LedgerAccounts {
		account, authCode, balance, err := parseAccountSpec(spec)
		if err != nil {
			return err
		}
		if _, err := ledger.Balance(ctx, account); err == nil {
			continue
		}
		if err := ledger.OpenAccount(ctx, account, authCode, balance, false); err != nil {
			return fmt.Errorf("failed to open account %q: %w", account, err)
		}
	}
	return nil
}

// parseAccountSpec splits "account:authcode:balance".
func parseAccountSpec(spec string) (string, string, core.Money, error) {
	parts := strings.Split(strings.TrimSpace(spec), ":")
	if len(parts) != 3 || parts[0] == "" {
		return "", "", core.Zero, fmt.Errorf("invalid ledger account %q: want account:authcode:balance", spec)
	}
	balance, err := core.ParseMoney(parts[2])
	if err != nil {
		return "", "", core.Zero, fmt.Errorf("invalid ledger account %q: %w", spec, err)
	}
	return parts[0], parts[1], balance, nil
}
