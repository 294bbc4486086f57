package sat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/fel-gt/pkg/sat"
)

// Vectores calculados con el algoritmo módulo 11 de la SAT (ponderación 2..n
// de derecha a izquierda sobre la parte numérica).
func TestValidateNIT_VectoresValidos(t *testing.T) {
	valid := []string{
		"9847847-8",
		"7636520-4",
		"1234567-9",
		"5215277-4",
		"8917505-0",
		"98478478",   // sin guion
		"9847847 8",  // con espacio
	}
	for _, nit := range valid {
		assert.NoError(t, sat.ValidateNIT(nit), "NIT %q debe ser válido", nit)
	}
}

func TestValidateNIT_VerificadorIncorrecto(t *testing.T) {
	err := sat.ValidateNIT("9847847-5")
	assert.Error(t, err, "un verificador incorrecto debe rechazarse")
}

func TestValidateNIT_ConsumidorFinal(t *testing.T) {
	assert.NoError(t, sat.ValidateNIT("CF"), "CF es un receptor válido")
	assert.NoError(t, sat.ValidateNIT("cf"), "CF en minúsculas también")
}

func TestValidateNIT_DemasiadoCorto(t *testing.T) {
	assert.Error(t, sat.ValidateNIT("7"))
	assert.Error(t, sat.ValidateNIT(""))
}

func TestValidateNIT_KSoloComoVerificador(t *testing.T) {
	// 'K' dentro del cuerpo no es un NIT bien formado.
	assert.Error(t, sat.ValidateNIT("12K4567-9"))
}

func TestComputeNITCheckDigit(t *testing.T) {
	cases := map[string]byte{
		"9847847": '8',
		"7636520": '4',
		"1234567": '9',
		"2876859": '0',
	}
	for base, want := range cases {
		got, err := sat.ComputeNITCheckDigit(base)
		require.NoError(t, err)
		assert.Equal(t, want, got, "verificador de %s", base)
	}
}

func TestComputeNITCheckDigit_SinDigitos(t *testing.T) {
	_, err := sat.ComputeNITCheckDigit("---")
	assert.Error(t, err)
}
