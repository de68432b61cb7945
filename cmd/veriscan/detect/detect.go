package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/veriscan-ai/veriscan/internal/config"
	"github.com/veriscan-ai/veriscan/internal/types"
	"github.com/veriscan-ai/veriscan/internal/ui"
	"github.com/veriscan-ai/veriscan/internal/utils/pathutil"
	"github.com/veriscan-ai/veriscan/pkg/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
)

var Cmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Analyze a single image through a running relay",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	flags := Cmd.Flags()

	flags.String("api-url", config.DefaultAPIURL, "Relay detect endpoint")
	flags.Duration("timeout", config.DefaultInferenceTimeout+config.DefaultInferenceTimeout/2, "Timeout for the whole request")
	flags.String("preview-dir", "", "Directory for the preview thumbnail (defaults to the system temp dir)")
	flags.Bool("no-progress", false, "Disable the progress spinner")

	viper.BindPFlag("api_url", flags.Lookup("api-url"))
	viper.BindPFlag("detect_timeout", flags.Lookup("timeout"))
	viper.BindPFlag("preview_dir", flags.Lookup("preview-dir"))
	viper.BindPFlag("no_progress", flags.Lookup("no-progress"))

	viper.BindEnv("api_url", "VERISCAN_API_URL", "VITE_API_URL")
}

func runDetect(cmd *cobra.Command, args []string) error {
	c := client.New(
		viper.GetString("api_url"),
		client.WithHTTPClient(&http.Client{Timeout: viper.GetDuration("detect_timeout")}),
	)

	var opts []ui.Option
	if dir := viper.GetString("preview_dir"); dir != "" {
		opts = append(opts, ui.WithPreviewDir(dir))
	}

	session := ui.NewSession(c, opts...)
	defer session.Close()

	var progress io.Writer
	if !viper.GetBool("no_progress") {
		progress = cmd.ErrOrStderr()
	}

	return detect(cmd.Context(), session, args[0], cmd.OutOrStdout(), progress)
}

// detect selects path, runs one analysis and prints the outcome. A nil
// progress writer disables the spinner.
func detect(ctx context.Context, session *ui.Session, path string, out, progress io.Writer) error {
	path, err := pathutil.ExpandPath(path)
	if err != nil {
		return err
	}

	if err := session.SelectFile(path); err != nil {
		return err
	}

	state := session.State()
	fmt.Fprintf(out, "%s (%s, %s)\n", state.Selection.Name, formatSize(state.Selection.Size), state.Selection.ContentType)
	if state.PreviewPath != "" {
		fmt.Fprintf(out, "Preview: %s\n", state.PreviewPath)
	}

	err = analyze(ctx, session, progress)
	if errors.Is(err, ui.ErrBusy) || errors.Is(err, ui.ErrNoSelection) {
		return err
	}

	return render(out, session.State())
}

func analyze(ctx context.Context, session *ui.Session, progress io.Writer) error {
	if progress == nil {
		return session.Analyze(ctx)
	}

	p := mpb.NewWithContext(ctx,
		mpb.WithOutput(progress),
		mpb.WithWidth(1),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	spinner := p.AddSpinner(0,
		mpb.AppendDecorators(decor.Name(" Analyzing..."), decor.Elapsed(decor.ET_STYLE_GO)),
		mpb.BarRemoveOnComplete(),
	)

	err := session.Analyze(ctx)

	spinner.Abort(true)
	p.Wait()

	return err
}

// render prints either the verdict or the error. The error is also returned
// so the process exits non-zero.
func render(out io.Writer, state ui.State) error {
	if state.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", state.Error)
		return errors.New(state.Error)
	}
	if state.Result == nil {
		return nil
	}

	fmt.Fprintf(out, "Verdict: %s\n", state.Result.Verdict)
	fmt.Fprintf(out, "Confidence: %s%%\n", strconv.FormatFloat(state.Result.Confidence, 'f', -1, 64))
	fmt.Fprintln(out, explanation(state.Result))

	return nil
}

func explanation(result *types.DetectionResult) string {
	if result.IsReal() {
		return "The image exhibits artifacts consistent with authentic capture."
	}
	return "The image exhibits artifacts consistent with AI synthesis."
}

func formatSize(size int64) string {
	return strconv.FormatFloat(float64(size)/1024, 'f', 1, 64) + " KB"
}
