package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/shopfloor/internal/ports/primary"
	"github.com/example/shopfloor/internal/wire"
)

func catalogService() (primary.CatalogService, error) {
	b, err := wire.LocalBackend()
	if err != nil {
		return nil, err
	}
	return b.Catalog, nil
}

// ProductCmd returns the product command with all subcommands attached.
func ProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage products (finished goods and raw materials)",
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, _ := cmd.Flags().GetString("sku")
			kind, _ := cmd.Flags().GetString("type")
			uom, _ := cmd.Flags().GetString("uom")
			stock, _ := cmd.Flags().GetFloat64("stock")

			svc, err := catalogService()
			if err != nil {
				return err
			}
			p, err := svc.CreateProduct(NewContext(), primary.CreateProductRequest{
				Name:          args[0],
				SKU:           sku,
				Type:          strings.ToUpper(kind),
				UnitOfMeasure: uom,
				OpeningStock:  stock,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created product %s: %s (%s, %g %s in stock)\n", p.ID, p.Name, p.Type, p.CurrentStock, p.UnitOfMeasure)
			return nil
		},
	}
	createCmd.Flags().String("sku", "", "Stock keeping unit (required)")
	createCmd.Flags().String("type", primary.ProductTypeRawMaterial, "RAW_MATERIAL or FINISHED_GOOD")
	createCmd.Flags().String("uom", "pcs", "Unit of measure")
	createCmd.Flags().Float64("stock", 0, "Opening stock")
	_ = createCmd.MarkFlagRequired("sku")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("type")

			svc, err := catalogService()
			if err != nil {
				return err
			}
			products, err := svc.ListProducts(NewContext(), primary.ProductFilters{Type: strings.ToUpper(kind)})
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}
			if len(products) == 0 {
				fmt.Println("No products found")
				return nil
			}

			fmt.Printf("\n%-10s %-15s %-14s %10s %-5s %s\n", "ID", "SKU", "TYPE", "STOCK", "UOM", "NAME")
			fmt.Println("────────────────────────────────────────────────────────────────")
			for _, p := range products {
				fmt.Printf("%-10s %-15s %-14s %10g %-5s %s\n", p.ID, p.SKU, p.Type, p.CurrentStock, p.UnitOfMeasure, p.Name)
			}
			fmt.Println()
			return nil
		},
	}
	listCmd.Flags().String("type", "", "Filter by product type")

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

// WorkCenterCmd returns the workcenter command with all subcommands attached.
func WorkCenterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workcenter",
		Aliases: []string{"wc"},
		Short:   "Manage work centers",
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a work center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _ := cmd.Flags().GetString("code")
			cost, _ := cmd.Flags().GetFloat64("cost-per-hour")

			svc, err := catalogService()
			if err != nil {
				return err
			}
			wc, err := svc.CreateWorkCenter(NewContext(), primary.CreateWorkCenterRequest{
				Name:        args[0],
				Code:        code,
				CostPerHour: cost,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created work center %s: %s [%s]\n", wc.ID, wc.Name, wc.Code)
			return nil
		},
	}
	createCmd.Flags().String("code", "", "Short unique code (required)")
	createCmd.Flags().Float64("cost-per-hour", 0, "Hourly cost")
	_ = createCmd.MarkFlagRequired("code")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List work centers",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := catalogService()
			if err != nil {
				return err
			}
			centers, err := svc.ListWorkCenters(NewContext())
			if err != nil {
				return fmt.Errorf("failed to list work centers: %w", err)
			}
			if len(centers) == 0 {
				fmt.Println("No work centers found")
				return nil
			}

			fmt.Printf("\n%-8s %-8s %10s %s\n", "ID", "CODE", "COST/H", "NAME")
			fmt.Println("────────────────────────────────────────────────────────────────")
			for _, wc := range centers {
				fmt.Printf("%-8s %-8s %10.2f %s\n", wc.ID, wc.Code, wc.CostPerHour, wc.Name)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}

// BOMCmd returns the bom command with all subcommands attached.
func BOMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bom",
		Short: "Manage bills of materials and routings",
	}

	createCmd := &cobra.Command{
		Use:   "create [product-id]",
		Short: "Create a bill of materials for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			ver, _ := cmd.Flags().GetString("version")

			svc, err := catalogService()
			if err != nil {
				return err
			}
			bom, err := svc.CreateBOM(NewContext(), primary.CreateBOMRequest{ProductID: args[0], Name: name, Version: ver})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created BOM %s for %s (version %s)\n", bom.ID, bom.ProductID, bom.Version)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "BOM name")
	createCmd.Flags().String("version", "1.0", "BOM version")

	addComponentCmd := &cobra.Command{
		Use:   "add-component [bom-id] [product-id] [quantity-per-unit]",
		Short: "Add a component line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseFloatArg("quantity-per-unit", args[2])
			if err != nil {
				return err
			}

			svc, err := catalogService()
			if err != nil {
				return err
			}
			bom, err := svc.AddBOMComponent(NewContext(), primary.AddBOMComponentRequest{
				BOMID:           args[0],
				ProductID:       args[1],
				QuantityPerUnit: qty,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s now has %d components\n", bom.ID, len(bom.Components))
			return nil
		},
	}

	addOperationCmd := &cobra.Command{
		Use:   "add-operation [bom-id] [name]",
		Short: "Add a routing step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, _ := cmd.Flags().GetInt("sequence")
			wc, _ := cmd.Flags().GetString("workcenter")
			duration, _ := cmd.Flags().GetInt("duration")
			setup, _ := cmd.Flags().GetInt("setup")

			svc, err := catalogService()
			if err != nil {
				return err
			}
			bom, err := svc.AddBOMOperation(NewContext(), primary.AddBOMOperationRequest{
				BOMID:           args[0],
				Sequence:        seq,
				Name:            args[1],
				WorkCenterID:    wc,
				DurationMinutes: duration,
				SetupMinutes:    setup,
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ %s now has %d operations\n", bom.ID, len(bom.Operations))
			return nil
		},
	}
	addOperationCmd.Flags().Int("sequence", 0, "Routing position (default: next)")
	addOperationCmd.Flags().String("workcenter", "", "Work center ID (required)")
	addOperationCmd.Flags().Int("duration", 0, "Minutes per unit (required)")
	addOperationCmd.Flags().Int("setup", 0, "Setup minutes per order")
	_ = addOperationCmd.MarkFlagRequired("workcenter")
	_ = addOperationCmd.MarkFlagRequired("duration")

	showCmd := &cobra.Command{
		Use:   "show [bom-id]",
		Short: "Show a bill of materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := catalogService()
			if err != nil {
				return err
			}
			bom, err := svc.GetBOM(NewContext(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nBOM:     %s\n", bom.ID)
			fmt.Printf("Product: %s\n", bom.ProductID)
			fmt.Printf("Name:    %s (version %s)\n", bom.Name, bom.Version)
			if len(bom.Components) > 0 {
				fmt.Println("\nComponents:")
				for _, c := range bom.Components {
					fmt.Printf("  - %s × %g\n", c.ProductID, c.QuantityPerUnit)
				}
			}
			if len(bom.Operations) > 0 {
				fmt.Println("\nOperations:")
				for _, op := range bom.Operations {
					fmt.Printf("  %d. %-20s %-8s %d min/unit + %d min setup\n", op.Sequence, op.Name, op.WorkCenterID, op.DurationMinutes, op.SetupMinutes)
				}
			}
			fmt.Println()
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bills of materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			product, _ := cmd.Flags().GetString("product")

			svc, err := catalogService()
			if err != nil {
				return err
			}
			boms, err := svc.ListBOMs(NewContext(), product)
			if err != nil {
				return fmt.Errorf("failed to list BOMs: %w", err)
			}
			if len(boms) == 0 {
				fmt.Println("No BOMs found")
				return nil
			}

			fmt.Printf("\n%-10s %-10s %-8s %s\n", "ID", "PRODUCT", "VERSION", "NAME")
			fmt.Println("────────────────────────────────────────────────────────────────")
			for _, b := range boms {
				fmt.Printf("%-10s %-10s %-8s %s\n", b.ID, b.ProductID, b.Version, b.Name)
			}
			fmt.Println()
			return nil
		},
	}
	listCmd.Flags().String("product", "", "Filter by product ID")

	cmd.AddCommand(createCmd, addComponentCmd, addOperationCmd, showCmd, listCmd)
	return cmd
}
