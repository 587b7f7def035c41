package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/datadrivenconstruction/skillmig/pkg/telemetry"
	"github.com/datadrivenconstruction/skillmig/pkg/version"
)

var tracingShutdown telemetry.ShutdownFunc

func initTracing(ctx context.Context) (telemetry.ShutdownFunc, error) {
	return telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        viper.GetBool("tracing.enabled"),
		ServiceVersion: version.Get().Version,
		Sampler:        viper.GetString("tracing.sampler"),
		Ratio:          viper.GetFloat64("tracing.ratio"),
	})
}

// shutdownTracing flushes pending spans. It is safe to call more than once.
func shutdownTracing(ctx context.Context) error {
	if tracingShutdown == nil {
		return nil
	}
	shutdown := tracingShutdown
	tracingShutdown = nil
	return shutdown(context.WithoutCancel(ctx))
}

// withTracing wraps the Run function of cmd in a cli.command span
func withTracing(cmd *cobra.Command) *cobra.Command {
	run := cmd.Run

	cmd.Run = func(cmd *cobra.Command, args []string) {
		attrs := []attribute.KeyValue{
			attribute.String("command.name", cmd.Name()),
			attribute.String("command.path", cmd.CommandPath()),
			attribute.Int("args.count", len(args)),
		}
		cmd.Flags().Visit(func(flag *pflag.Flag) {
			attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
		})

		ctx, span := telemetry.Tracer("skillmig.cli").Start(cmd.Context(), "cli.command", trace.WithAttributes(attrs...))
		defer span.End()

		cmd.SetContext(ctx)
		run(cmd, args)
		span.SetStatus(codes.Ok, "")
	}
	return cmd
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Bool("tracing-enabled", false, "Enable OpenTelemetry tracing")
	flags.String("tracing-sampler", "always", "Tracing sampler type (always, never, ratio)")
	flags.Float64("tracing-ratio", 1, "Sampling ratio when using the ratio sampler")

	viper.BindPFlag("tracing.enabled", flags.Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", flags.Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", flags.Lookup("tracing-ratio"))
}
