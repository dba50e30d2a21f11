package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func payrollCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Nómina",
	}
	cmd.AddCommand(payrollGenerateCommand(env))
	return cmd
}

func payrollGenerateCommand(env *Env) *cobra.Command {
	var company, run string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Recalcula los detalles de una corrida a partir de las horas aprobadas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Payroll.Generate(cmd.Context(), company, run)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  empleados=%d  bruto=%s  deducciones=%s  neto=%s\n",
				res.RunNumber, res.EmployeeCount,
				res.TotalGrossPay.StringFixed(2), res.TotalDeductions.StringFixed(2), res.TotalNetPay.StringFixed(2))
			return err
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "ID de la empresa")
	cmd.Flags().StringVar(&run, "run", "", "ID de la corrida")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}
