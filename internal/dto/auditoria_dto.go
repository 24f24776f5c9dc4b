package dto

// HallazgoResponse is one consistency violation found by the Auditor.
// Regla is the stable check identifier; RefID points at the offending row
// when the violation concerns a single record.
type HallazgoResponse struct {
	Regla   string  `json:"regla"`
	Detalle string  `json:"detalle"`
	RefID   *string `json:"ref_id"`
}

type AuditoriaResponse struct {
	SesionCajaID string             `json:"sesion_caja_id"`
	Consistente  bool               `json:"consistente"`
	Hallazgos    []HallazgoResponse `json:"hallazgos"`
	GeneradoAt   string             `json:"generado_at"`
}
