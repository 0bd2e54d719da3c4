package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toranova/id2/ibi"
	"github.com/toranova/id2/keystore"
	"github.com/toranova/id2/schnorr"
	"github.com/toranova/id2/transport"
)

// NewProveCmd returns the command that identifies to a verifier.
func NewProveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prove",
		Short:   "Identify to a verifier with a user secret key",
		PreRunE: loadConfig,
		RunE:    prove,
	}
	cmd.Flags().String("usk", "", "User key file (default [datadir]/usk.json)")
	cmd.Flags().String("mpk", "", "Authority public key file (default [datadir]/mpk.b58)")
	cmd.Flags().String("verifier", _config.VerifierAddr, "Verifier IP:Port")
	cmd.Flags().DurationP("timeout", "t", _config.Timeout, "Connect and per-message timeout")
	return cmd
}

// NewServeCmd returns the command that runs a verifier.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Verify provers until interrupted",
		PreRunE: loadConfig,
		RunE:    serve,
	}
	cmd.Flags().String("mpk", "", "Authority public key file (default [datadir]/mpk.b58)")
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port")
	cmd.Flags().String("metrics", _config.MetricsAddr, "Listen IP:Port for Prometheus metrics (disabled if empty)")
	cmd.Flags().String("id", "", "Only accept this identity")
	cmd.Flags().DurationP("timeout", "t", _config.Timeout, "Per-message timeout")
	cmd.Flags().Int("max-sessions", _config.MaxSessions, "Maximum concurrent sessions")
	cmd.Flags().Float64("rate", _config.RatePerHost, "Sessions per second per remote host (0 disables)")
	cmd.Flags().Int("burst", _config.BurstPerHost, "Session burst per remote host")
	cmd.Flags().Bool("once", false, "Serve a single session and exit")
	return cmd
}

// NewSelfTestCmd returns the command that checks a user key in-process.
func NewSelfTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "selftest",
		Short:   "Run prover and verifier in-process against a user key",
		PreRunE: loadConfig,
		RunE:    selftest,
	}
	cmd.Flags().String("usk", "", "User key file (default [datadir]/usk.json)")
	cmd.Flags().String("mpk", "", "Authority public key file (default [datadir]/mpk.b58)")
	cmd.Flags().DurationP("timeout", "t", _config.Timeout, "Per-message timeout")
	return cmd
}

func flagOr(cmd *cobra.Command, name, def string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return def
}

// loadProver reads mpk and the user key named by the command's flags.
func loadProver(cmd *cobra.Command) (mpk []byte, usk *keystore.Secret, err error) {
	mpk, err = readPublic(flagOr(cmd, "mpk", _config.MasterPublicPath()))
	if err != nil {
		return nil, nil, err
	}
	usk, err = readSecret(flagOr(cmd, "usk", _config.UserKeyPath()), keystore.KindUser)
	if err != nil {
		return nil, nil, err
	}
	return mpk, usk, nil
}

func prove(cmd *cobra.Command, args []string) error {
	alg, err := algorithm()
	if err != nil {
		return err
	}
	mpk, usk, err := loadProver(cmd)
	if err != nil {
		return err
	}
	defer usk.Destroy()

	logger := _config.Logger()
	outcome, err := alg.Prove(cmd.Context(), mpk, usk.Identity, usk.Key,
		&transport.TCPDialer{WriteTimeout: _config.Timeout}, _config.VerifierAddr, _config.Timeout, logger)

	fmt.Fprintln(cmd.OutOrStdout(), outcome)
	if err != nil {
		return err
	}
	if outcome != ibi.OutcomeAccept {
		return errors.New("identification rejected")
	}
	return nil
}

func selftest(cmd *cobra.Command, args []string) error {
	alg, err := algorithm()
	if err != nil {
		return err
	}
	mpkRaw, uskSecret, err := loadProver(cmd)
	if err != nil {
		return err
	}
	defer uskSecret.Destroy()

	mpk, err := schnorr.ParsePublicKey(mpkRaw)
	if err != nil {
		return err
	}
	usk, err := schnorr.ParseSignature(uskSecret.Key)
	if err != nil {
		return err
	}
	defer usk.Destroy()

	outcome, err := ibi.SelfTest(cmd.Context(), alg.Scheme(), mpk, uskSecret.Identity, usk, _config.Timeout, _config.Logger())
	fmt.Fprintln(cmd.OutOrStdout(), outcome)
	if err != nil {
		return err
	}
	if outcome != ibi.OutcomeAccept {
		return errors.New("user key does not identify under this authority")
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	alg, err := algorithm()
	if err != nil {
		return err
	}
	mpkRaw, err := readPublic(flagOr(cmd, "mpk", _config.MasterPublicPath()))
	if err != nil {
		return err
	}
	mpk, err := schnorr.ParsePublicKey(mpkRaw)
	if err != nil {
		return err
	}

	logger := _config.Logger()
	opts := []ibi.VerifierOption{ibi.WithLogger(logger)}
	if _config.Identity != "" {
		opts = append(opts, ibi.ExpectIdentity([]byte(_config.Identity)))
	}
	verifier, err := ibi.NewVerifier(alg.Scheme(), mpk, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once, _ := cmd.Flags().GetBool("once"); once {
		res, err := verifier.ListenAndVerify(ctx, _config.BindAddr, _config.Timeout)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", res.Outcome, res.ID)
		return err
	}

	ln, err := transport.Listen(_config.BindAddr, _config.Timeout)
	if err != nil {
		return err
	}
	defer ln.Close()

	var metrics *ibi.Metrics
	if _config.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = ibi.NewMetrics(reg)
		go serveMetrics(ctx, _config.MetricsAddr, reg, logger)
	}

	srv := ibi.NewServer(verifier, ln, ibi.ServerConfig{
		Timeout:      _config.Timeout,
		MaxSessions:  _config.MaxSessions,
		RatePerHost:  _config.RatePerHost,
		BurstPerHost: _config.BurstPerHost,
		Metrics:      metrics,
		OnResult: func(r *ibi.Result) {
			logger.WithFields(logrus.Fields{
				"outcome": r.Outcome,
				"id":      string(r.ID),
				"remote":  r.Remote,
			}).Info("session")
		},
	}, logger)
	return srv.Serve(ctx)
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *logrus.Entry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	logger.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Error("metrics server")
	}
}
