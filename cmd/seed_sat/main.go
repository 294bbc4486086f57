// seed_sat genera scripts SQL para poblar los catálogos FEL (tipos de DTE y
// frases legales) a partir del XML oficial Frases.xml publicado por la SAT.
//
// Uso: go run ./cmd/seed_sat [ruta/Frases.xml]
// Por defecto busca Frases.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalogos_sat.sql
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/tu-usuario/fel-gt/pkg/sat"
)

type catalogo struct {
	Frases []fraseXML `xml:"frase"`
}

type fraseXML struct {
	Tipo        int    `xml:"tipo,attr"`
	Codigo      int    `xml:"codigo,attr"`
	Descripcion string `xml:"descripcion,attr"`
}

// Tipos de DTE sembrados, con su categoría de movimiento y los pares
// (tipo, código de escenario) de frase que exige cada uno.
var dteTypes = []struct {
	code     string
	name     string
	moveType string
	frases   [][2]int
}{
	{sat.DTETypeFACT, "Factura", sat.GeneralTypeInvoice, [][2]int{{sat.FraseTipoISR, 1}}},
	{sat.DTETypeFCAM, "Factura cambiaria", sat.GeneralTypeInvoice, [][2]int{{sat.FraseTipoISR, 1}}},
	{sat.DTETypeFPEQ, "Factura pequeño contribuyente", sat.GeneralTypeInvoice, [][2]int{{sat.FraseTipoNoGeneraIVA, 1}}},
	{sat.DTETypeFCAP, "Factura cambiaria pequeño contribuyente", sat.GeneralTypeInvoice, [][2]int{{sat.FraseTipoNoGeneraIVA, 1}}},
	{sat.DTETypeRECI, "Recibo", sat.GeneralTypeReceipt, nil},
	{sat.DTETypeNCRE, "Nota de crédito", sat.GeneralTypeRefund, [][2]int{{sat.FraseTipoISR, 1}}},
	{sat.DTETypeNDEB, "Nota de débito", sat.GeneralTypeRefund, [][2]int{{sat.FraseTipoISR, 1}}},
	{sat.DTETypeNABN, "Nota de abono", sat.GeneralTypeRefund, nil},
}

func main() {
	xmlPath := "Frases.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var cat catalogo
	dec := xml.NewDecoder(f)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&cat); err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalogos_sat.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogos FEL: frases legales y tipos de DTE\n")
	out.WriteString("-- Generado desde Frases.xml (SAT)\n\n")

	// 1. Frases legales (tipo + código de escenario, par único)
	out.WriteString("-- 1. Frases legales\n")
	seeded := 0
	for _, fr := range cat.Frases {
		if !sat.ValidFraseTypes[fr.Tipo] || fr.Descripcion == "" {
			continue
		}
		fmt.Fprintf(out, "INSERT INTO frases (id, name, tipo, codigo)\n")
		fmt.Fprintf(out, "VALUES (gen_random_uuid(), '%s', %d, %d)\n",
			escapeSQL(strings.TrimSpace(fr.Descripcion)), fr.Tipo, fr.Codigo)
		out.WriteString("ON CONFLICT (tipo, codigo) DO UPDATE SET name = EXCLUDED.name;\n")
		seeded++
	}
	out.WriteString("\n")

	// 2. Tipos de DTE
	out.WriteString("-- 2. Tipos de DTE\n")
	for _, t := range dteTypes {
		fmt.Fprintf(out, "INSERT INTO dte_types (id, code, name, general_move_type, active)\n")
		fmt.Fprintf(out, "VALUES (gen_random_uuid(), '%s', '%s', '%s', true)\n",
			t.code, escapeSQL(t.name), t.moveType)
		out.WriteString("ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, general_move_type = EXCLUDED.general_move_type;\n")
	}
	out.WriteString("\n")

	// 3. Frases por tipo de DTE, en orden de secuencia
	out.WriteString("-- 3. Frases por tipo de DTE\n")
	for _, t := range dteTypes {
		for i, par := range t.frases {
			fmt.Fprintf(out, "INSERT INTO dte_type_frases (dte_type_id, frase_id, sequence)\n")
			fmt.Fprintf(out, "SELECT d.id, f.id, %d FROM dte_types d, frases f\n", (i+1)*10)
			fmt.Fprintf(out, "WHERE d.code = '%s' AND f.tipo = %d AND f.codigo = %d\n", t.code, par[0], par[1])
			out.WriteString("ON CONFLICT (dte_type_id, frase_id) DO UPDATE SET sequence = EXCLUDED.sequence;\n")
		}
	}

	fmt.Printf("Generado %s: %d frases, %d tipos de DTE\n", outPath, seeded, len(dteTypes))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
