// Seed creates the first administrador account and a starter material
// catalog so a fresh deployment is usable immediately. Idempotent: existing
// rows are left untouched.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/config"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/infra"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/model"
	"github.com/andrecordeiro89/HealthAdmin-sub000/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var catalogoInicial = []model.Material{
	{Descricao: "Parafuso Cortical 3.5mm", Codigo: ptr("PC-3.5")},
	{Descricao: "Parafuso Esponjoso 4.0mm", Codigo: ptr("PE-4.0")},
	{Descricao: "Placa Bloqueada LCP 3.5mm", Codigo: ptr("PL-LCP-3.5")},
	{Descricao: "Fio de Kirschner 2.0mm", Codigo: ptr("FK-2.0")},
	{Descricao: "Haste Intramedular Femoral", Codigo: ptr("HI-FEM")},
	{Descricao: "Cimento Ósseo com Antibiótico"},
	{Descricao: "Broca Cirúrgica 2.5mm"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		fail("database: %v", err)
	}
	if err := infra.RunMigrations(db); err != nil {
		fail("migrations: %v", err)
	}

	ctx := context.Background()
	if err := seedAdmin(ctx, db); err != nil {
		fail("seed admin: %v", err)
	}
	if err := seedCatalogo(ctx, db); err != nil {
		fail("seed catálogo: %v", err)
	}
	fmt.Println("seed concluído")
}

func seedAdmin(ctx context.Context, db *gorm.DB) error {
	repo := repository.NewUsuarioRepository(db)
	if _, err := repo.FindByUsername(ctx, "admin"); err == nil {
		fmt.Println("usuário admin já existe, pulando")
		return nil
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin1234"
		fmt.Println("AVISO: SEED_ADMIN_PASSWORD não definido, usando senha padrão — troque em produção")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	admin := &model.Usuario{
		Username:     "admin",
		Nome:         "Administrador",
		PasswordHash: string(hash),
		Rol:          "administrador",
		Ativo:        true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return err
	}
	fmt.Println("usuário admin criado")
	return nil
}

func seedCatalogo(ctx context.Context, db *gorm.DB) error {
	repo := repository.NewMaterialRepository(db)
	existentes, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}
	porDescricao := make(map[string]bool, len(existentes))
	for _, m := range existentes {
		porDescricao[m.Descricao] = true
	}

	criados := 0
	for _, m := range catalogoInicial {
		if porDescricao[m.Descricao] {
			continue
		}
		m := m
		if err := repo.Create(ctx, &m); err != nil {
			return err
		}
		criados++
	}
	fmt.Printf("catálogo: %d materiais criados, %d já existiam\n", criados, len(catalogoInicial)-criados)
	return nil
}

func ptr(s string) *string { return &s }

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
