package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/priyam/econcoach/internal/exam"
	"github.com/priyam/econcoach/internal/llm"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <question-id>",
	Short: "Grade an essay against the mark scheme",
	Long: "Marks a submitted essay against the question's mark scheme. The essay\n" +
		"comes from --essay (a file, or - for stdin), from --image (scanned\n" +
		"handwritten pages, repeatable, in page order), or both.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		essayPath, _ := cmd.Flags().GetString("essay")
		imagePaths, _ := cmd.Flags().GetStringArray("image")

		if essayPath == "" && len(imagePaths) == 0 {
			return fmt.Errorf("provide --essay, --image, or both")
		}

		var essay string
		if essayPath != "" {
			data, err := readInput(essayPath)
			if err != nil {
				return fmt.Errorf("read essay: %w", err)
			}
			essay = strings.TrimSpace(string(data))
		}

		var pages []llm.Attachment
		for _, p := range imagePaths {
			att, err := readImage(p)
			if err != nil {
				return err
			}
			pages = append(pages, att)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		svc, err := newService(ctx, st)
		if err != nil {
			return err
		}

		catalog, err := st.EffectiveCatalog(ctx)
		if err != nil {
			return err
		}
		q, ok := exam.FindQuestion(catalog, args[0])
		if !ok {
			return fmt.Errorf("unknown question id: %s", args[0])
		}

		feedback, err := svc.GradeEssay(ctx, q, essay, pages)
		if err != nil {
			return err
		}
		fmt.Println(feedback)
		return nil
	},
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readImage loads one scanned page, inferring the media type from the
// file extension and falling back to content sniffing.
func readImage(path string) (llm.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return llm.Attachment{}, fmt.Errorf("read image %s: %w", path, err)
	}

	var mime string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mime = "image/jpeg"
	case ".png":
		mime = "image/png"
	case ".webp":
		mime = "image/webp"
	default:
		mime = http.DetectContentType(data)
		if !strings.HasPrefix(mime, "image/") {
			mime = llm.DefaultImageMIME
		}
	}
	return llm.Attachment{MIME: mime, Data: data}, nil
}

func init() {
	gradeCmd.Flags().String("essay", "", "Essay file to grade (- for stdin)")
	gradeCmd.Flags().StringArray("image", nil, "Scanned handwritten page (repeat for multiple pages)")
}
