package cli

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion builds the shell completion tree from the registered commands
// and their flags. root carries the top-level flags.
//
// Install with: COMP_INSTALL=1 deposits
func (a *App) Completion(root *flag.FlagSet) *complete.Command {
	cmd := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(root),
	}
	for _, sub := range a.Commands() {
		fs := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(fs)
		cmd.Sub[sub.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	cmd.Sub["help"] = &complete.Command{Args: predict.Set(commandNames(a))}
	return cmd
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	if fs == nil {
		return nil
	}
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		flags[f.Name] = predictorFor(f)
	})
	return flags
}

func predictorFor(f *flag.Flag) complete.Predictor {
	switch f.Name {
	case "f", "o":
		return predict.Files("*.json")
	case "db":
		return predict.Files("*.db")
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	return predict.Something
}

func commandNames(a *App) []string {
	var names []string
	for _, c := range a.Commands() {
		names = append(names, c.Name())
	}
	return names
}
