package sat

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateNIT valida un NIT guatemalteco (con o sin guion) comprobando su
// dígito verificador según el algoritmo módulo 11 de la SAT. El último
// carácter es el verificador y puede ser 'K' (valor 10). "CF" (consumidor
// final) se acepta como identificador válido de receptor.
func ValidateNIT(nit string) error {
	cleaned := strings.ToUpper(strings.TrimSpace(nit))
	if cleaned == ConsumidorFinal {
		return nil
	}
	body, check, err := splitNIT(cleaned)
	if err != nil {
		return err
	}
	expected := computeCheckDigit(body)
	if check != expected {
		return fmt.Errorf("sat: dígito verificador del NIT inválido: esperado %c, recibido %c", expected, check)
	}
	return nil
}

// ComputeNITCheckDigit calcula el dígito verificador para la parte numérica
// del NIT (sin verificador). Devuelve 'K' cuando el resultado módulo 11 es 10.
func ComputeNITCheckDigit(base string) (byte, error) {
	digits := extractDigits(base)
	if len(digits) == 0 {
		return 0, fmt.Errorf("sat: NIT sin dígitos")
	}
	return computeCheckDigit(digits), nil
}

// splitNIT separa cuerpo y verificador. Acepta "1234567-9", "1234567 9" o "12345679".
func splitNIT(nit string) (body []byte, check byte, err error) {
	var chars []byte
	for _, r := range nit {
		if unicode.IsDigit(r) || r == 'K' {
			chars = append(chars, byte(r))
		}
	}
	if len(chars) < 2 {
		return nil, 0, fmt.Errorf("sat: NIT demasiado corto: %q", nit)
	}
	body = chars[:len(chars)-1]
	check = chars[len(chars)-1]
	for _, b := range body {
		if b == 'K' {
			return nil, 0, fmt.Errorf("sat: 'K' solo es válida como dígito verificador")
		}
	}
	return body, check, nil
}

// computeCheckDigit aplica módulo 11: los dígitos se ponderan de derecha a
// izquierda empezando en 2; verificador = (11 - suma mod 11) mod 11, 10 -> 'K'.
func computeCheckDigit(body []byte) byte {
	var sum, weight int
	weight = 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
	}
	c := (11 - sum%11) % 11
	if c == 10 {
		return 'K'
	}
	return byte('0' + c)
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
