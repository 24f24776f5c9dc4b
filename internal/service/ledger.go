package service

import (
	"github.com/DanielPOG/AgroShpV1-sub003/internal/model"
	"github.com/DanielPOG/AgroShpV1-sub003/internal/repository"

	"github.com/shopspring/decimal"
)

// esperadoEfectivo folds raw ledger aggregation rows into the expected
// physical cash for a till slice, starting from the float carried in.
// Only cash-method movements touch the drawer; direction comes from the
// movement kind, never from a stored sign.
func esperadoEfectivo(inicial decimal.Decimal, rows []repository.TotalLedger) (decimal.Decimal, error) {
	total := inicial
	for _, row := range rows {
		if row.Metodo != model.MetodoEfectivo {
			continue
		}
		signo, err := row.Tipo.Signo()
		if err != nil {
			return decimal.Decimal{}, err
		}
		if signo > 0 {
			total = total.Add(row.Total)
		} else {
			total = total.Sub(row.Total)
		}
	}
	return total, nil
}

// sumarVentasPorMetodo extracts the per-method sale totals from ledger rows.
func sumarVentasPorMetodo(rows []repository.TotalLedger) map[model.MetodoPago]decimal.Decimal {
	ventas := make(map[model.MetodoPago]decimal.Decimal, len(model.MetodosPago))
	for _, m := range model.MetodosPago {
		ventas[m] = decimal.Zero
	}
	for _, row := range rows {
		if row.Tipo == model.MovVenta {
			ventas[row.Metodo] = ventas[row.Metodo].Add(row.Total)
		}
	}
	return ventas
}
