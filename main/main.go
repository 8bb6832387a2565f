package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/xtal"
	"github.com/phil-mansfield/xtal/diffraction"
	"github.com/phil-mansfield/xtal/io"
)

// PowderFigure is the name of the figure written when Plot is set.
const PowderFigure = "powder.png"

// NumCores is the number of goroutines used by the density and isosurface
// stages.
var NumCores int

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		simulate, plotPowder string
		exampleConfig        string
	)
	vars := map[string]*string{
		"Simulate":      &simulate,
		"PlotPowder":    &plotPowder,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&NumCores, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores.",
	)
	flag.StringVar(
		&simulate, "Simulate", "",
		"Configuration file for [Simulate] mode.",
	)
	flag.StringVar(
		&plotPowder, "PlotPowder", "",
		"Powder table written by [Simulate] mode. A figure is written next "+
			"to the table.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. The only accepted argument is "+
			"'Simulate'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate":
		wrap, err := io.ReadSimulationConfig(simulate)
		if err != nil {
			log.Fatal(err.Error())
		}
		simulateMain(wrap, filepath.Dir(simulate))

	case "PlotPowder":
		refs, err := io.ReadReflections(plotPowder)
		if err != nil {
			log.Fatal(err.Error())
		}
		fname := strings.TrimSuffix(plotPowder, filepath.Ext(plotPowder)) + ".png"
		plotPowderPattern(refs, path.Base(plotPowder), fname)
		plt.Execute()

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulate":
			fmt.Println(io.ExampleSimulationFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'Simulate'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but xtal "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func simulateMain(wrap *io.SimulationWrapper, configDir string) {
	con := &wrap.Simulation
	fg := simulateSetupIO(con)
	defer fg.Close()

	if info, err := os.Stat(con.Output); err != nil {
		log.Fatal(err.Error())
	} else if !info.IsDir() {
		log.Fatalf("'Output' value %s is not a directory.", con.Output)
	}

	p, err := xtal.NewPipelineFromConfig(wrap, configDir, NumCores)
	if err != nil {
		log.Fatal(err.Error())
	}
	p.Log(true)

	res, err := p.Run()
	if err != nil {
		log.Fatal(err.Error())
	}

	log.Printf("Writing to directory %s", con.Output)
	if err := res.Write(con.Output); err != nil {
		log.Fatal(err.Error())
	}

	if con.Plot {
		title := fmt.Sprintf(`$\lambda$ = %.4g $\AA$`, con.Wavelength)
		plotPowderPattern(res.Powder, title, path.Join(con.Output, PowderFigure))
		plt.Execute()
	}
}

func simulateSetupIO(con *io.SimulationConfig) *FileGroup {
	fg := &FileGroup{}
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	log.Println("Running Simulate main.")

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	return fg
}

// plotPowderPattern draws each powder line as a stick at its two-theta.
func plotPowderPattern(
	refs []diffraction.Reflection, title, fname string,
) {
	plt.Figure(plt.FigSize(10, 5))
	for _, r := range refs {
		plt.Plot(
			[]float64{r.TwoTheta, r.TwoTheta}, []float64{0, r.Intensity},
			"k", plt.LW(2),
		)
	}
	plt.Title(title)
	plt.XLabel(`$2\theta$ [deg]`, plt.FontSize(16))
	plt.YLabel(`$I/I_{\rm max}$`, plt.FontSize(16))
	plt.XLim(0, 180)
	plt.YLim(0, 105)
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}
