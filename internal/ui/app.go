package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot/vg"

	"facecam/internal/config"
	"facecam/internal/form"
	"facecam/internal/models"
	"facecam/internal/ui/cwidget"
	"facecam/processing/capture"
	processing "facecam/processing/detector"
	"facecam/processing/modifier"
	"facecam/processing/plot"
)

const (
	chooseVideoText = "Choose Video"
	plotRefresh     = 500 * time.Millisecond
	statRefresh     = 200 * time.Millisecond
)

var stopTimeout = 2 * time.Second

var ErrStillStopping = errors.New("previous run is still stopping")

type DetectApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config    *config.Config
	detector  processing.FrameDetector
	recorder  *plot.Recorder
	streamers func(*config.Config, form.Options) (capture.VideoStreamer, error)

	processor *processing.Processor
	plotting  bool

	brightness  *cwidget.ToggleEntry
	blur        *cwidget.ToggleEntry
	cameraCheck *widget.Check
	videoCheck  *widget.Check
	plotCheck   *widget.Check
	videoButton *widget.Button
	stopButton  *widget.Button
	videoPath   string

	sourceCanvas   *canvas.Image
	modifiedCanvas *canvas.Image
	latencyLabel   *widget.Label
	fpsLabel       *widget.Label
	countLabel     *widget.Label

	plotWin    fyne.Window
	plotCanvas *canvas.Image
}

func CreateApp(cfg *config.Config, det processing.FrameDetector) *DetectApp {
	return newDetectApp(app.NewWithID("io.facecam"), cfg, det)
}

func newDetectApp(a fyne.App, cfg *config.Config, det processing.FrameDetector) *DetectApp {
	w := a.NewWindow("Image Processing")
	w.Resize(fyne.NewSize(1400, 620))

	d := &DetectApp{
		fyneApp:   a,
		mainWin:   w,
		config:    cfg,
		detector:  det,
		recorder:  plot.NewRecorder(),
		streamers: capture.NewStreamer,
	}
	d.build()

	return d
}

func (a *DetectApp) Run() {
	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *DetectApp) build() {
	a.brightness = cwidget.NewToggleEntry("Brightness (0 to 255)", "0-255", func(s string) error {
		_, err := form.ParseBrightness(s)
		return err
	})
	a.blur = cwidget.NewToggleEntry("Kernel Size (Only odd numbers)", "3, 5, 7...", func(s string) error {
		_, err := form.ParseKernel(s)
		return err
	})

	modifiers := widget.NewCard("Image Modifiers", "", container.NewVBox(a.brightness, a.blur))

	a.cameraCheck = widget.NewCheck("Camera", nil)
	a.videoCheck = widget.NewCheck("", nil)
	a.videoButton = widget.NewButtonWithIcon(chooseVideoText, theme.FolderOpenIcon(), a.browseFiles)

	source := widget.NewCard("Capture Source", "", container.NewVBox(
		a.cameraCheck,
		container.NewBorder(nil, nil, a.videoCheck, nil, a.videoButton),
	))

	a.plotCheck = widget.NewCheck("Plot detections", nil)
	a.plotCheck.SetChecked(a.config.GetPlotEnabled())

	confirm := widget.NewButtonWithIcon("Confirm", theme.ConfirmIcon(), func() {
		if err := a.Confirm(); err != nil {
			a.showError(err)
		}
	})
	confirm.Importance = widget.HighImportance

	a.stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), a.StopProcessing)
	a.stopButton.Disable()

	sidebar := container.NewVBox(
		modifiers,
		source,
		a.plotCheck,
		widget.NewAccordion(widget.NewAccordionItem("Stream Settings", a.streamSettings())),
		widget.NewSeparator(),
		confirm,
	)

	a.sourceCanvas = newFrameCanvas()
	a.modifiedCanvas = newFrameCanvas()

	a.latencyLabel = widget.NewLabel(formatLatency(0))
	a.fpsLabel = widget.NewLabel(formatFPS(0))
	a.countLabel = widget.NewLabel(formatCount(models.FrameStats{}))

	videoContainer := container.NewBorder(
		container.NewHBox(a.fpsLabel, widget.NewSeparator(), a.latencyLabel, widget.NewSeparator(), a.countLabel, layout.NewSpacer(), a.stopButton),
		nil, nil, nil,
		container.NewGridWithColumns(2,
			container.NewBorder(widget.NewLabelWithStyle("Source frame", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}), nil, nil, nil, a.sourceCanvas),
			container.NewBorder(widget.NewLabelWithStyle("Modified frame", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}), nil, nil, nil, a.modifiedCanvas),
		),
	)

	split := container.NewHSplit(
		container.NewPadded(container.NewVScroll(sidebar)),
		container.NewPadded(videoContainer),
	)
	split.SetOffset(0.25)

	a.mainWin.SetContent(split)

	a.mainWin.Canvas().SetOnTypedRune(func(r rune) {
		if r == 'q' {
			a.StopProcessing()
		}
	})

	a.mainWin.SetCloseIntercept(func() {
		a.StopProcessing()
		a.config.SetPlotEnabled(a.plotCheck.Checked)
		a.config.SaveByDefault()
		a.mainWin.Close()
	})
}

func (a *DetectApp) streamSettings() fyne.CanvasObject {
	fpsInput := cwidget.NewIntInput("FPS", "Enter integer", int(a.config.GetFPS()), func(i int) {
		a.config.SetFPS(uint(i))
	})

	widthInput := cwidget.NewIntInput("Width", "Enter integer", a.config.GetWidth(), func(i int) {
		a.config.SetWidth(i)
	})

	heightInput := cwidget.NewIntInput("Height", "Enter integer", a.config.GetHeight(), func(i int) {
		a.config.SetHeight(i)
	})

	deviceSelect := widget.NewSelect(nil, func(s string) {
		if id, err := strconv.Atoi(s); err == nil {
			a.config.SetDeviceID(id)
		}
	})
	deviceSelect.PlaceHolder = "Loading cameras..."
	deviceSelect.Disable()

	go func() {
		devices, err := capture.ListCameras()

		fyne.Do(func() {
			switch {
			case err != nil:
				log.WithError(err).Warn("failed to list cameras")
				deviceSelect.PlaceHolder = "Error listing cameras"
			case len(devices) == 0:
				deviceSelect.PlaceHolder = "No cameras found"
			default:
				deviceSelect.Options = devices
				deviceSelect.Enable()
				deviceSelect.SetSelected(strconv.Itoa(a.config.GetDeviceID()))
			}
			deviceSelect.Refresh()
		})
	}()

	return container.NewVBox(
		widget.NewLabel("Camera:"),
		deviceSelect,
		fpsInput,
		widthInput,
		heightInput,
	)
}

func (a *DetectApp) browseFiles() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.setVideoPath(reader.URI().Path())
	}, a.mainWin)

	d.SetFilter(storage.NewExtensionFileFilter([]string{".mp4"}))

	if dir, err := filepath.Abs(a.config.Video.BrowseDir); err == nil {
		if _, err := os.Stat(dir); err == nil {
			if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
				d.SetLocation(lister)
			}
		}
	}

	d.Show()
}

func (a *DetectApp) setVideoPath(path string) {
	a.videoPath = path

	if path == "" {
		a.videoButton.SetText(chooseVideoText)
		return
	}
	a.config.SetVideoPath(path)
	a.videoButton.SetText("File: " + filepath.Base(path))
}

func (a *DetectApp) formState() form.State {
	return form.State{
		BrightnessOn:   a.brightness.Checked(),
		BrightnessText: a.brightness.Text(),
		BlurOn:         a.blur.Checked(),
		KernelText:     a.blur.Text(),
		CameraOn:       a.cameraCheck.Checked,
		VideoOn:        a.videoCheck.Checked,
		VideoPath:      a.videoPath,
		PlotOn:         a.plotCheck.Checked,
	}
}

// Confirm validates the form and starts a run. The form is cleared only when
// the run started.
func (a *DetectApp) Confirm() error {
	opts, err := a.formState().Validate()
	if err != nil {
		return err
	}

	if err := a.StartProcessing(opts); err != nil {
		return err
	}

	a.resetForm()

	return nil
}

func (a *DetectApp) resetForm() {
	a.brightness.Reset()
	a.blur.Reset()
	a.cameraCheck.SetChecked(false)
	a.videoCheck.SetChecked(false)
	a.setVideoPath("")
}

func (a *DetectApp) StartProcessing(opts form.Options) error {
	a.StopProcessing()
	if a.processor != nil {
		return ErrStillStopping
	}

	streamer, err := a.streamers(a.config, opts)
	if err != nil {
		return err
	}

	if err := streamer.Start(); err != nil {
		return err
	}

	var sink processing.StatsSink
	if opts.Plot {
		sink = a.recorder
	}

	chain := modifier.Chain(opts)
	p := processing.NewProcessor(a.config, streamer, a.detector, chain, sink)

	log.WithFields(log.Fields{
		"source":    opts.Source,
		"video":     opts.VideoPath,
		"modifiers": fmt.Sprint(chain),
		"plot":      opts.Plot,
	}).Info("starting capture")

	a.config.SetActiveSource(opts.Source)
	a.processor = p
	a.plotting = opts.Plot
	a.stopButton.Enable()

	if opts.Plot {
		a.showPlotWindow()
		go a.runPlotLoop(p)
	}

	p.Start()
	go a.runPlayerLoop(p)
	go a.runStatLoop(p)
	go a.watchSession(p)

	return nil
}

// StopProcessing ends the current run, if any, and waits for it to wind down.
// A run that outlives stopTimeout stays current until watchSession sees it
// finish.
func (a *DetectApp) StopProcessing() {
	p := a.processor
	if p == nil {
		return
	}

	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(stopTimeout):
		log.Warn("processor did not stop in time")
		return
	}

	var err error
	select {
	case err = <-p.ErrChan:
	default:
	}

	a.endSession(p, err)
}

func (a *DetectApp) watchSession(p *processing.Processor) {
	<-p.Done()

	var err error
	select {
	case err = <-p.ErrChan:
	default:
	}

	fyne.Do(func() {
		a.endSession(p, err)
	})
}

// endSession runs once per processor on the UI goroutine.
func (a *DetectApp) endSession(p *processing.Processor, err error) {
	if a.processor != p {
		return
	}
	a.processor = nil
	a.stopButton.Disable()

	if err != nil {
		dialog.ShowError(err, a.mainWin)
	}

	if a.plotting {
		a.plotting = false
		a.finishPlot()
	}

	log.Info("capture finished")
}

func (a *DetectApp) finishPlot() {
	if a.recorder.Len() > 0 {
		path, err := a.recorder.Save(a.config.Plot.OutputDir)
		if err != nil {
			log.WithError(err).Error("failed to save plot")
		} else {
			log.WithField("path", path).Info("plot saved")
		}
	}

	if a.plotWin != nil {
		a.plotWin.Close()
		a.plotWin = nil
	}

	a.recorder.Reset()
}

func (a *DetectApp) showPlotWindow() {
	a.plotCanvas = canvas.NewImageFromImage(nil)
	a.plotCanvas.FillMode = canvas.ImageFillContain
	a.plotCanvas.SetMinSize(fyne.NewSize(500, 400))

	a.plotWin = a.fyneApp.NewWindow("Detections")
	a.plotWin.SetContent(a.plotCanvas)
	a.plotWin.Show()
}

func (a *DetectApp) runPlotLoop(p *processing.Processor) {
	ticker := time.NewTicker(plotRefresh)
	defer ticker.Stop()

	plotCanvas := a.plotCanvas

	for {
		select {
		case <-ticker.C:
			img, err := a.recorder.Render(5*vg.Inch, 4*vg.Inch)
			if err != nil {
				log.WithError(err).Warn("failed to render plot")
				continue
			}
			fyne.Do(func() {
				plotCanvas.Image = img
				plotCanvas.Refresh()
			})

		case <-p.Done():
			return
		}
	}
}

func (a *DetectApp) runStatLoop(p *processing.Processor) {
	uiTicker := time.NewTicker(statRefresh)
	defer uiTicker.Stop()

	for {
		select {
		case <-uiTicker.C:
			latency, fps := p.Latency(), p.FPS()
			fyne.Do(func() {
				a.latencyLabel.SetText(formatLatency(latency))
				a.fpsLabel.SetText(formatFPS(fps))
			})
		case <-p.Done():
			return
		}
	}
}

func (a *DetectApp) runPlayerLoop(p *processing.Processor) {
	displayFPS := a.config.GetFPS()
	if displayFPS == 0 {
		displayFPS = 30
	}
	displayTicker := time.NewTicker(time.Second / time.Duration(displayFPS))
	defer displayTicker.Stop()

	var last *models.FrameResult

	for {
		select {
		case res := <-p.OutImageStream:
			last = &res

		case <-displayTicker.C:
			if last == nil {
				continue
			}
			res := *last
			last = nil
			fyne.Do(func() {
				a.sourceCanvas.Image = res.Source
				a.sourceCanvas.Refresh()
				a.modifiedCanvas.Image = res.Modified
				a.modifiedCanvas.Refresh()
				a.countLabel.SetText(formatCount(res.Stats))
			})

		case <-p.Done():
			return
		}
	}
}

// showError uses an information dialog for form mistakes and an error
// dialog for everything else.
func (a *DetectApp) showError(err error) {
	if form.IsValidation(err) {
		dialog.ShowInformation("INFO", err.Error(), a.mainWin)
		return
	}
	dialog.ShowError(err, a.mainWin)
}

func newFrameCanvas() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(480, 360))
	return img
}

func formatFPS(v uint) string {
	return fmt.Sprintf("FPS: %d", v)
}

func formatLatency(v time.Duration) string {
	return fmt.Sprintf("Latency: %d ms", v.Milliseconds())
}

func formatCount(s models.FrameStats) string {
	return fmt.Sprintf("Faces: %d  Eyes: %d", s.Faces, s.Eyes)
}
