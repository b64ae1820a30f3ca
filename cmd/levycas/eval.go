package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	levycas "github.com/ajlevy246/LevyCAS"
	"github.com/ajlevy246/LevyCAS/parse"
)

func newEvalCmd() *cobra.Command {
	var derivVar, integVar string
	var latex bool

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "canonicalize an expression, optionally differentiating or integrating it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parse.Expr(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if derivVar != "" && integVar != "" {
				return errors.New("eval: choose one of --derivative and --integrate")
			}
			switch {
			case derivVar != "":
				e, err = levycas.Derivative(e, derivVar)
			case integVar != "":
				depth := viper.GetInt("depth")
				if depth <= 0 {
					depth = levycas.DefaultIntegrateDepth
				}
				e, err = levycas.IntegrateDepth(e, integVar, depth)
			}
			if err != nil {
				return err
			}
			if latex {
				fmt.Fprintln(cmd.OutOrStdout(), e.LaTeX())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), e.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&derivVar, "derivative", "d", "", "differentiate with respect to this variable")
	cmd.Flags().StringVarP(&integVar, "integrate", "i", "", "integrate with respect to this variable")
	cmd.Flags().BoolVar(&latex, "latex", false, "render the result as LaTeX")
	return cmd
}
