// seed_pos genera un script SQL para poblar el catálogo a partir de la
// exportación CSV de un punto de venta legado (separador ';', codificación
// ISO-8859-1, columnas: sku;nombre;precio;unidad;bodega;cantidad).
//
// Uso: go run ./cmd/seed_pos <establecimiento_id> [ruta/export.csv]
// Por defecto busca export_pos.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_catalog.sql
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type productRow struct {
	sku    string
	nombre string
	precio string
	unidad string
	// bodega (código) → cantidad, acumulado de las filas del CSV
	stock map[string]string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Uso: seed_pos <establecimiento_id> [export.csv]")
		os.Exit(1)
	}
	establishmentID := os.Args[1]
	csvPath := "export_pos.csv"
	if len(os.Args) > 2 {
		csvPath = os.Args[2]
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Los POS legados exportan en ISO-8859-1 (tildes y eñes).
	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = 6

	rows, err := r.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	products := make(map[string]*productRow)
	warehouses := make(map[string]bool)
	for i, row := range rows {
		if i == 0 && strings.EqualFold(row[0], "sku") {
			continue // encabezado
		}
		sku := strings.TrimSpace(row[0])
		if sku == "" {
			continue
		}
		p, ok := products[sku]
		if !ok {
			p = &productRow{
				sku:    sku,
				nombre: strings.TrimSpace(row[1]),
				precio: strings.TrimSpace(row[2]),
				unidad: strings.TrimSpace(row[3]),
				stock:  make(map[string]string),
			}
			products[sku] = p
		}
		bodega := strings.TrimSpace(row[4])
		if bodega != "" {
			warehouses[bodega] = true
			p.stock[bodega] = strings.TrimSpace(row[5])
		}
	}

	// Orden estable para salida reproducible
	var skus []string
	for sku := range products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	var codes []string
	for code := range warehouses {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_catalog.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	fmt.Fprintf(out, "-- Catálogo inicial importado del POS legado (%s)\n", filepath.Base(csvPath))
	out.WriteString("-- Generado por cmd/seed_pos\n\n")

	out.WriteString("-- 1. Bodegas (la primera en orden alfabético queda como principal)\n")
	for i, code := range codes {
		fmt.Fprintf(out,
			"INSERT INTO warehouses (id, establishment_id, code, name, is_active, is_primary, created_at, updated_at)\n"+
				"VALUES (gen_random_uuid(), '%s', '%s', '%s', TRUE, %t, now(), now())\n"+
				"ON CONFLICT (establishment_id, code) DO NOTHING;\n",
			escapeSQL(establishmentID), escapeSQL(code), escapeSQL(code), i == 0)
	}
	out.WriteString("\n-- 2. Productos con su desglose de stock por código de bodega\n")
	out.WriteString("-- (stock_per_warehouse usa el código de bodega; reemplazar por el UUID tras el import)\n")
	for _, sku := range skus {
		p := products[sku]
		stockJSON := stockToJSON(p.stock)
		fmt.Fprintf(out,
			"INSERT INTO products (id, establishment_id, sku, name, description, price, minimal_unit, additional_units, stock_per_warehouse, stock_aggregate, stock_flat, created_at, updated_at)\n"+
				"VALUES (gen_random_uuid(), '%s', '%s', '%s', '', %s, '%s', '[]', '%s', '{}', 0, now(), now())\n"+
				"ON CONFLICT (establishment_id, sku) DO NOTHING;\n",
			escapeSQL(establishmentID), escapeSQL(p.sku), escapeSQL(p.nombre),
			numericOrZero(p.precio), escapeSQL(unitOrDefault(p.unidad)), escapeSQL(stockJSON))
	}

	fmt.Printf("Generado %s: %d productos, %d bodegas\n", outPath, len(skus), len(codes))
}

// stockToJSON arma el JSONB de stock_per_warehouse con reserved en 0.
func stockToJSON(stock map[string]string) string {
	obj := make(map[string]map[string]json.Number, len(stock))
	for code, qty := range stock {
		obj[code] = map[string]json.Number{
			"stock":    json.Number(numericOrZero(qty)),
			"reserved": json.Number("0"),
		}
	}
	b, _ := json.Marshal(obj)
	return string(b)
}

func numericOrZero(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return "0"
	}
	for i, c := range s {
		if (c < '0' || c > '9') && c != '.' && !(i == 0 && c == '-') {
			return "0"
		}
	}
	return s
}

func unitOrDefault(s string) string {
	if s == "" {
		return "UND"
	}
	return strings.ToUpper(s)
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
