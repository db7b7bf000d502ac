package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/nat-n/piper"
	"github.com/nat-n/polyreg"
)

/* Commands:
 * load
 * save
 * collapse-border
 * remove-valence2
 * smooth-pca
 * flatten
 * reproject-border
 * reproject-pca
 * quality
 * verify
 */

func announce(flags map[string]piper.Flag, msg string) {
	if _, verbose := flags["verbose"]; verbose {
		fmt.Println(msg)
	}
}

func meshOf(data interface{}) (*polyreg.Mesh, error) {
	m, ok := data.(*polyreg.Mesh)
	if !ok || m == nil {
		return nil, errors.New("No mesh loaded, start the pipeline with load")
	}
	return m, nil
}

func load(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Loading mesh from "+args[0])
	m, err := polyreg.ReadOBJFile(args[0])
	if err != nil {
		return
	}
	result = interface{}(m)
	return
}

func save(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Saving mesh to "+args[0])
	m, err := meshOf(data)
	if err != nil {
		return
	}
	err = m.WriteOBJFile(args[0])
	result = data
	return
}

func collapseBorder(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Collapsing small border edges")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	fraction, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return
	}
	rounds := polyreg.CollapseBorderSmallEdges(m, fraction)
	announce(flags, fmt.Sprintf("Border collapse converged after %d rounds", rounds))
	result = data
	return
}

func removeValence2(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Removing degenerate faces and straight border vertices")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	polyreg.RemoveValence2Faces(m)
	polyreg.RemoveValence2BorderVertices(m, polyreg.DefaultCornerDegree)
	result = data
	return
}

func smoothPCA(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Regularizing polygons")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	opts, err := polyreg.ParseSmoothOptions(args[0])
	if err != nil {
		return
	}
	_, opts.FixIrregular = flags["fix-irregular"]
	polyreg.UpdateVertexNormals(m)
	polyreg.SmoothPCA(m, opts)
	result = data
	return
}

func flatten(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Flattening faces")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	fields := strings.Split(args[0], ",")
	if len(fields) > 2 {
		err = errors.New("Too many flattening options in: " + args[0])
		return
	}
	steps, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return
	}
	onlySelected := len(fields) == 2
	if onlySelected {
		var tolerance float64
		tolerance, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return
		}
		n := polyreg.SelectNonPlanar(m, tolerance)
		announce(flags, fmt.Sprintf("Flattening %d faces beyond tolerance %g", n, tolerance))
	}
	displ := polyreg.FlattenFaces(m, steps, onlySelected)
	announce(flags, fmt.Sprintf("Largest flattening displacement: %g", displ))
	result = data
	return
}

func reprojectBorder(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Smoothing and reprojecting the border")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	opts, err := polyreg.ParseReprojectOptions(args[0])
	if err != nil {
		return
	}
	polyreg.LaplacianReprojectBorder(m, polyreg.Triangulate(m), opts.Steps, opts.Damping, opts.CornerDegree)
	result = data
	return
}

func reprojectPCA(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Regularizing polygons on the original surface")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	if strings.Count(args[0], ",") > 1 {
		err = errors.New("reproject-pca accepts steps[,damping], got: " + args[0])
		return
	}
	opts, err := polyreg.ParseReprojectOptions(args[0])
	if err != nil {
		return
	}
	_, opts.FixIrregular = flags["fix-irregular"]
	polyreg.SmoothReprojectPCASelf(m, opts.Steps, opts.FixIrregular, opts.Damping)
	result = data
	return
}

func quality(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	m, err := meshOf(data)
	if err != nil {
		return
	}
	if m.FN() == 0 {
		err = polyreg.ErrNoFaces
		return
	}
	var qType polyreg.QualityType
	switch args[0] {
	case "angle":
		qType = polyreg.QualityAngle
	case "planar":
		qType = polyreg.QualityPlanar
	case "template":
		qType = polyreg.QualityTemplate
	default:
		err = errors.New("Unknown quality measure: " + args[0])
		return
	}
	polyreg.UpdateQuality(m, qType)

	var sum, worst float64
	m.EachFace(func(_ int, f *polyreg.Face) {
		sum += f.Q
		if f.Q > worst {
			worst = f.Q
		}
	})
	fmt.Printf("%s quality: mean %g, worst %g over %d faces\n",
		qType, sum/float64(m.FN()), worst, m.FN())
	result = data
	return
}

func verify(data interface{}, flags map[string]piper.Flag, args []string) (result interface{}, err error) {
	announce(flags, "Verifying mesh")
	m, err := meshOf(data)
	if err != nil {
		return
	}
	err = polyreg.Verify(m)
	result = data
	return
}

func main() {
	cli := piper.CLIApp{
		Name:        "polyreg",
		Description: "cleans up and regularizes polygonal meshes",
	}

	cli.RegisterFlag(piper.Flag{
		Name:        "verbose",
		Symbol:      "v",
		Description: "Verbose mode",
	})

	cli.RegisterFlag(piper.Flag{
		Name:        "fix-irregular",
		Symbol:      "i",
		Description: "Keep vertices of irregular valence in place during smooth-pca and reproject-pca",
	})

	cli.RegisterCommand(piper.Command{
		Name:        "load",
		Description: "load a polygon mesh from an obj file",
		Args:        []string{"obj file"},
		Task:        load,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "save",
		Description: "save the mesh as an obj file",
		Args:        []string{"obj file"},
		Task:        save,
	})

	cli.RegisterCommand(piper.Command{
		Name: "collapse-border",
		Description: ("collapse border edges shorter than the given fraction of " +
			"the average edge length, then remove degenerate faces and vertices"),
		Args: []string{"edge fraction"},
		Task: collapseBorder,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "remove-valence2",
		Description: "remove degenerate faces and straight valence one border vertices",
		Args:        []string{},
		Task:        removeValence2,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "smooth-pca",
		Description: "regularize polygon shapes, accepts iterations[,damping[,smooth term]]",
		Args:        []string{"smoothing options"},
		Task:        smoothPCA,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "flatten",
		Description: "flatten faces, accepts steps[,tolerance] to only flatten faces less planar than tolerance",
		Args:        []string{"flattening options"},
		Task:        flatten,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "reproject-border",
		Description: "smooth the border and reproject it, accepts steps[,damping[,corner degree]]",
		Args:        []string{"reprojection options"},
		Task:        reprojectBorder,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "reproject-pca",
		Description: "regularize polygons while staying on the input surface, accepts steps[,damping]",
		Args:        []string{"reprojection options"},
		Task:        reprojectPCA,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "quality",
		Description: "report face quality, one of angle, planar or template",
		Args:        []string{"quality measure"},
		Task:        quality,
	})

	cli.RegisterCommand(piper.Command{
		Name:        "verify",
		Description: "check mesh invariants",
		Args:        []string{},
		Task:        verify,
	})

	err := cli.Run()

	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Println(red(err))
		cli.PrintHelp()
	}
}
