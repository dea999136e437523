// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ezrec/regvm/machine"
)

func main() {
	var configFile string
	var memorySize int
	var numCpus int
	var compile string
	var unit int
	var start uint64
	var ticks int
	var verbose bool

	flag.StringVar(&configFile, "config", "", ".toml machine configuration")
	flag.IntVar(&memorySize, "m", machine.DEFAULT_MEMORY_SIZE, "Memory size in bytes")
	flag.IntVar(&numCpus, "n", machine.DEFAULT_NUM_CPUS, "Number of execution units")
	flag.StringVar(&compile, "c", "", ".asm file to assemble and run")
	flag.IntVar(&unit, "u", 0, "Execution unit to run on")
	flag.Uint64Var(&start, "a", 0, "Start address")
	flag.IntVar(&ticks, "t", 0, "Run by program counter, stopping after this many instructions")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%v: Unknown arguments: %v\n", os.Args[0], flag.Args())
		os.Exit(2)
	}

	config := machine.DefaultConfig()
	if len(configFile) != 0 {
		inf, err := os.Open(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v: %v\n", configFile, err)
			os.Exit(1)
		}
		config, err = machine.LoadConfig(inf)
		inf.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v: %v\n", configFile, err)
			os.Exit(1)
		}
	}

	// Flags given on the command line override the configuration file.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "m":
			config.MemorySize = memorySize
		case "n":
			config.NumCpus = numCpus
		case "v":
			config.Verbose = verbose
		}
	})

	var logger *zap.Logger
	var err error
	if config.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: logger: %v\n", os.Args[0], err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	err = config.Validate()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	vm := machine.NewMachine(config, machine.WithLogger(logger))

	err = vm.Start()
	if err != nil {
		logger.Fatal("start", zap.Error(err))
	}

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			logger.Fatal("open", zap.String("file", compile), zap.Error(err))
		}
		defer inf.Close()

		prog, err := vm.Assemble(inf)
		if err != nil {
			logger.Fatal("assemble", zap.String("file", compile), zap.Error(err))
		}

		if ticks > 0 {
			err = vm.RunProgram(unit, prog.Instructions(), start, ticks)
		} else {
			err = vm.LoadAndRun(unit, prog.Instructions(), start)
		}
		if err != nil {
			logger.Error("run", zap.String("file", compile), zap.Error(err))
		}

		c, cerr := vm.Cpu(unit)
		if cerr == nil {
			fmt.Print(c.String())
		}
	}

	err = vm.Stop()
	if err != nil {
		logger.Fatal("stop", zap.Error(err))
	}
}
