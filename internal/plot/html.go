package plot

import (
	"encoding/base64"
	"encoding/json"
	"html/template"
	"io"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/pkg/errors"
)

// PlotlySrc is the Plotly bundle the pages load
const PlotlySrc = "https://cdn.plot.ly/plotly-2.34.0.min.js"

var (
	standaloneHTML = `<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<title>{{ .Title }}</title>
		<script src="{{ .CDN }}"></script>
	</head>
	<body style="background-color: #121212; color: #e0e0e0; font-family: sans-serif;">
		<div id="plot" style="height: 90vh;"></div>
		<script>
			fig = JSON.parse(atob('{{ .Figure }}'))
			Plotly.newPlot('plot', fig.data, fig.layout, {responsive: true});
		</script>
	</body>
</html>`
	standaloneHTMLTmpl = template.Must(template.New("plot").Parse(standaloneHTML))
)

// WriteHTML renders fig as a standalone HTML page
func WriteHTML(w io.Writer, fig *grob.Fig) error {
	if fig == nil {
		return errors.New("no figure to render")
	}
	figAsJSON, err := json.Marshal(fig)
	if err != nil {
		return errors.Wrap(err, "failed to marshal plotly figure")
	}
	data := &struct {
		Title  string
		CDN    string
		Figure string
	}{
		Title:  Title,
		CDN:    PlotlySrc,
		Figure: base64.StdEncoding.EncodeToString(figAsJSON),
	}
	if err := standaloneHTMLTmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render plotly page")
	}
	return nil
}

// WriteHTMLFile renders fig to fileName
func WriteHTMLFile(fileName string, fig *grob.Fig) error {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q", fileName)
	}
	return writeAndClose(f, fileName, fig)
}

// writeAndClose renders fig to w and closes it. A failed close is reported
// when the render itself succeeded.
func writeAndClose(w io.WriteCloser, fileName string, fig *grob.Fig) (err error) {
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "failed to close file %q", fileName)
		}
	}()
	return WriteHTML(w, fig)
}
