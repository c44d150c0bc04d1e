package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dhamidi/typecache"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	var verbosity int
	rootCmd := &cobra.Command{
		Use:   "typecachectl",
		Short: "Inspect a parsed-type cache over a directory of class files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbose", "v", 0, "log verbosity (0-4)")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newHierarchyCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newResolverOver builds a Resolver backed by a single directory-backed
// loader domain, the shape every subcommand below needs.
func newResolverOver(root string) (*typecache.Resolver, *typecache.Cache) {
	cache := typecache.NewCache()
	domains := &dirDomains{dom: newDirDomain(root)}
	return typecache.NewResolver(cache, domains), cache
}

func newDumpCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "dump <type-name>",
		Short: "Parse one type and print its name, super type, interfaces, and declared methods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, _ := newResolverOver(root)
			pt, err := resolver.GetParsedType(context.Background(), args[0], dirDomainHandle)
			if err != nil {
				return fmt.Errorf("dump %s: %w", args[0], err)
			}
			return newJSONEncoder(os.Stdout).Encode(pt)
		},
	}
	cmd.Flags().StringVarP(&root, "root", "r", ".", "directory of .class files")
	return cmd
}

func newHierarchyCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "hierarchy <type-name>",
		Short: "Resolve and print a type's super-type and interface chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, _ := newResolverOver(root)
			chain := resolver.TypeHierarchy(context.Background(), args[0], dirDomainHandle)
			if len(chain) == 0 {
				return fmt.Errorf("hierarchy %s: no ancestors resolved", args[0])
			}
			return newJSONEncoder(os.Stdout).EncodeHierarchy(chain)
		},
	}
	cmd.Flags().StringVarP(&root, "root", "r", ".", "directory of .class files")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var root string
	var kind string
	var typeName string
	var limit int
	cmd := &cobra.Command{
		Use:   "search <substring>",
		Short: "List cached type names, or one type's declared method names, containing a substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, cache := newResolverOver(root)
			if err := warmCache(resolver, root); err != nil {
				return err
			}

			switch kind {
			case "types":
				for _, name := range cache.MatchingTypeNames(args[0], limit) {
					fmt.Println(name)
				}
			case "methods":
				if typeName == "" {
					return fmt.Errorf("search --kind methods requires --type")
				}
				for _, name := range cache.MatchingMethodNames(typeName, args[0], limit) {
					fmt.Println(name)
				}
			default:
				return fmt.Errorf("unknown --kind %q (expected types or methods)", kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&root, "root", "r", ".", "directory of .class files")
	cmd.Flags().StringVarP(&kind, "kind", "k", "types", "types or methods")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "type name to search declared methods on (required with --kind methods)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of results (0 = unlimited)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print cache size counters after warming it over a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, cache := newResolverOver(root)
			if err := warmCache(resolver, root); err != nil {
				return err
			}
			s := cache.Stats()
			fmt.Printf("domains=%d bootstrapTypes=%d cachedTypeNames=%d cachedMethods=%d\n",
				s.Domains, s.BootstrapTypes, s.CachedTypeNames, s.CachedMethods)
			return nil
		},
	}
	cmd.Flags().StringVarP(&root, "root", "r", ".", "directory of .class files")
	return cmd
}

// warmCache walks root and resolves every .class file it finds so the
// search/stats commands have something to query; a live agent would never
// need this, since its cache fills as classes actually load.
func warmCache(resolver *typecache.Resolver, root string) error {
	return walkClassFiles(root, func(name string) {
		resolver.GetParsedType(context.Background(), name, dirDomainHandle)
	})
}

func walkClassFiles(root string, visit func(name string)) error {
	return dirWalk(root, func(relPath string) {
		name := strings.TrimSuffix(relPath, ".class")
		name = strings.ReplaceAll(name, string(os.PathSeparator), ".")
		visit(name)
	})
}
